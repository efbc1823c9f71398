// Package report turns completed benchmark sessions into artifacts: an HTML
// page of box or violin plots (one chart per session, many sessions per
// page), a console table and a JSON export.
package report

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/stats"
)

var (
	// ErrOutput wraps failures to create or write the output destination.
	ErrOutput = errors.New("cannot render output")

	// ErrNotOpen is returned when rendering before Open.
	ErrNotOpen = errors.New("renderer is not open")
)

// Plot types understood by plotly.
const (
	PlotViolin = "violin"
	PlotBox    = "box"
)

// Options configures an HTMLRenderer.
type Options struct {
	PlotType   string // "violin" or "box"
	ShowLegend bool   // side legend to toggle individual plots
	ShowEpochs bool   // append "; epochs: N" to trace names
	RangeMode  string // plotly yaxis.rangemode, empty to leave unset
	Host       string // optional description printed above the charts
}

// DefaultOptions mirrors the usual setup: violin plots with a legend, y axis
// starting at zero.
func DefaultOptions() Options {
	return Options{
		PlotType:   PlotViolin,
		ShowLegend: true,
		RangeMode:  "tozero",
	}
}

// HTMLRenderer appends one plotly chart per session to a single HTML file.
// The zero value is not usable; call NewHTMLRenderer.
type HTMLRenderer struct {
	opts Options
	log  *slog.Logger

	path string
	out  io.WriteCloser
	err  error
}

// NewHTMLRenderer returns a renderer that is not yet associated with a file.
func NewHTMLRenderer(opts Options, log *slog.Logger) *HTMLRenderer {
	if opts.PlotType == "" {
		opts.PlotType = PlotViolin
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTMLRenderer{opts: opts, log: log}
}

// Options returns the renderer options.
func (r *HTMLRenderer) Options() Options { return r.opts }

// Open creates path and writes the page header. Any error is wrapped in
// ErrOutput.
func (r *HTMLRenderer) Open(path string) error {
	if r.out != nil {
		return fmt.Errorf("%w: already rendering to %s", ErrOutput, r.path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w to %s: %w", ErrOutput, path, err)
	}
	r.path, r.out, r.err = path, f, nil
	if err := headerTmpl.Execute(f, r.opts); err != nil {
		r.err = err
		return fmt.Errorf("%w to %s: %w", ErrOutput, path, err)
	}
	r.log.Info("rendering report", "path", path, "plot", r.opts.PlotType)
	return nil
}

// IsOpen reports whether an output file is associated with the renderer.
func (r *HTMLRenderer) IsOpen() bool { return r.out != nil }

// Path returns the output path given to Open.
func (r *HTMLRenderer) Path() string { return r.path }

// Render appends the chart for s under the HTML element id, using the
// configured plot type.
func (r *HTMLRenderer) Render(s *bench.Session, id string) error {
	return r.RenderAs(s, id, "")
}

// RenderAs is Render with a plot type override for this chart only. The ids
// must be unique within the page.
func (r *HTMLRenderer) RenderAs(s *bench.Session, id, plotType string) error {
	if r.out == nil {
		return ErrNotOpen
	}
	if plotType == "" {
		plotType = r.opts.PlotType
	}
	p := r.buildPlot(s, id, plotType)
	if err := plotTmpl.Execute(r.out, p); err != nil {
		r.err = err
		return fmt.Errorf("%w to %s: %w", ErrOutput, r.path, err)
	}
	r.log.Debug("rendered chart", "id", id, "title", s.Title(), "cases", s.Len())
	return nil
}

// Close writes the page footer and closes the file. Calling Close on a
// renderer that is not open does nothing.
func (r *HTMLRenderer) Close() error {
	if r.out == nil {
		return nil
	}
	out := r.out
	r.out = nil

	var errs []error
	if r.err == nil {
		if _, err := io.WriteString(out, footer); err != nil {
			errs = append(errs, err)
		}
	}
	if err := out.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w to %s: %w", ErrOutput, r.path, err)
	}
	r.log.Info("rendered report", "path", r.path)
	return nil
}

type trace struct {
	Name string    `json:"name"`
	Y    []float64 `json:"y"`
}

type axis struct {
	Title     string `json:"title"`
	RangeMode string `json:"rangemode,omitempty"`
	AutoRange bool   `json:"autorange"`
}

type title struct {
	Text string `json:"text"`
}

type layout struct {
	Title      title `json:"title"`
	ShowLegend bool  `json:"showlegend"`
	YAxis      axis  `json:"yaxis"`
}

type plot struct {
	ID       string
	PlotType string
	Traces   []trace
	Layout   layout
}

func (r *HTMLRenderer) buildPlot(s *bench.Session, id, plotType string) plot {
	cfg := s.Config()
	cases := s.Cases()

	scale := 1.0
	yTitle := "time per " + cfg.Unit
	if cfg.Relative && len(cases) > 0 {
		base := cases[0].Summary().Median
		if base > 0 {
			scale = 1 / base
			yTitle = "relative to " + cases[0].Name
		} else {
			r.log.Warn("baseline median is zero, plotting absolute times", "title", cfg.Title)
		}
	}

	p := plot{ID: id, PlotType: plotType, Traces: []trace{}}
	p.Layout = layout{
		Title:      title{Text: cfg.Title},
		ShowLegend: r.opts.ShowLegend,
		YAxis:      axis{Title: yTitle, RangeMode: r.opts.RangeMode, AutoRange: true},
	}

	for _, c := range cases {
		ys := c.Elapsed()
		for i := range ys {
			ys[i] *= scale
		}
		p.Traces = append(p.Traces, trace{
			Name: TraceName(c.Name, c.Summary(), c.Epochs(), r.opts.ShowEpochs),
			Y:    ys,
		})
	}
	return p
}

// TraceName labels a case as "<name> (error: X.XX%)", with "; epochs: N"
// appended inside the parentheses when showEpochs is set. An undefined error
// is shown as "n/a".
func TraceName(name string, sum stats.Summary, epochs int, showEpochs bool) string {
	errText := "n/a"
	if sum.ErrorDefined() && !math.IsInf(sum.PercentageError, 0) {
		errText = fmt.Sprintf("%.2f%%", 100*sum.PercentageError)
	}
	suffix := ""
	if showEpochs {
		suffix = fmt.Sprintf("; epochs: %d", epochs)
	}
	return fmt.Sprintf("%s (error: %s%s)", name, errText, suffix)
}

var headerTmpl = template.Must(template.New("header").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <script src="https://cdn.plot.ly/plotly-3.0.1.min.js"></script>
  </head>
  <body>
{{- if .Host}}
    <p class="host">{{.Host}}</p>
{{- end}}
`))

var plotTmpl = template.Must(template.New("plot").Parse(`    <div id="{{.ID}}">
      <div class="plot-container plotly" style="width: 100%;"></div>
    </div>
    <script>
        var data = {{.Traces}};
        data = data.map(a => Object.assign(a, { boxpoints: 'all', pointpos: 0, type: {{.PlotType}}, box: {visible: true}, meanline: {visible: true} }));
        var layout = {{.Layout}};
        Plotly.newPlot({{.ID}}, data, layout, {responsive: true});
    </script>
`))

const footer = `  </body>
</html>
`
