package profiles

import (
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gamescale/scaler"
)

// Format writes rows as an aligned table. Numbers are localized for tag.
func Format(w io.Writer, cfg scaler.Config, rows []Row, tag language.Tag) error {
	p := message.NewPrinter(tag)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	p.Fprintf(tw, "canvas %.0fx%.0f  scale %.2f..%.2f  padding %.0f  safe area %v\n\n",
		cfg.LogicalSize.Width, cfg.LogicalSize.Height, cfg.MinScale, cfg.MaxScale, cfg.Padding, cfg.EnableSafeArea)
	p.Fprintln(tw, "DEVICE\tVIEWPORT\tDPR\tINSETS T/R/B/L\tSCALE\tFIT\tCANVAS\tOFFSET\tCOVER\tDEVICE PX")
	for _, r := range rows {
		st := r.State
		in := st.SafeAreaInsets
		physical := st.GameSize.Width * st.DevicePixelRatio * st.GameSize.Height * st.DevicePixelRatio
		p.Fprintf(tw, "%s\t%.0fx%.0f\t%.2f\t%.0f/%.0f/%.0f/%.0f\t%.3f\t%s\t%.0fx%.0f\t%.1f,%.1f\t%.1f%%\t%s\n",
			r.Profile.Name,
			st.ViewportSize.Width, st.ViewportSize.Height,
			st.DevicePixelRatio,
			in.Top, in.Right, in.Bottom, in.Left,
			st.Scale,
			Fit(st, cfg),
			st.GameSize.Width, st.GameSize.Height,
			st.Offset.X, st.Offset.Y,
			Coverage(st)*100,
			humanize.SIWithDigits(physical, 1, "px"),
		)
	}
	return tw.Flush()
}
