package bloom

import (
	"fmt"
	"runtime"

	"github.com/maseology/mmio"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/report"
)

// Run executes the whole analysis: build, join, render.
func Run(cfg *Config) error {
	tt := mmio.NewTimer()
	defer tt.Lap(fmt.Sprintf("\nRun complete. n processes: %v", runtime.GOMAXPROCS(0)))

	d, err := cfg.Build()
	if err != nil {
		return err
	}
	a, err := d.Analyze()
	if err != nil {
		return err
	}

	outdir := cfg.OutDir()
	mmio.MakeDir(outdir)

	println("render report..")
	idx := report.Index{Title: fmt.Sprintf("Oder %d Prymnesium bloom", cfg.BloomYear)}

	for _, gr := range a.Gauges {
		fn := fmt.Sprintf("hydrograph-%s.png", gr.Name)
		if err := report.Hydrograph(outdir+fn, gr.Name, gr.T, gr.Q, gr.Clim); err != nil {
			return err
		}
		idx.Figures = append(idx.Figures, report.Figure{File: fn,
			Caption: fmt.Sprintf("%s: %d daily discharge over the historical p10/p50/p90 envelope.", gr.Name, cfg.BloomYear)})
		idx.Skill = append(idx.Skill, report.SkillRow{Name: gr.Name, N: gr.Skill.N,
			NSE: gr.Skill.NSE, KGE: gr.Skill.KGE, RMSE: gr.Skill.RMSE, Bias: gr.Skill.Bias,
			Anom: gr.Anom})
	}

	if err := report.Profile(outdir+"profile.png", a.Bins, d.Towns); err != nil {
		return err
	}
	idx.Figures = append(idx.Figures, report.Figure{File: "profile.png",
		Caption: fmt.Sprintf("Longitudinal chlorophyll-a profile, %.0f km bins.", cfg.BinKM)})

	if err := report.Scatter(outdir+"scatter.png", a.Q, a.Chl, a.Pearson, a.Spearman); err != nil {
		return err
	}
	idx.Figures = append(idx.Figures, report.Figure{File: "scatter.png",
		Caption: "Chlorophyll-a against same-day cell discharge."})

	if err := report.Timeseries(outdir+"chl-daily.png", a.DayT, a.DayChl); err != nil {
		return err
	}
	idx.Figures = append(idx.Figures, report.Figure{File: "chl-daily.png",
		Caption: "Daily mean chlorophyll-a of the matched samples."})

	if err := writeTables(outdir, d, a); err != nil {
		return err
	}
	if err := report.WriteIndex(outdir, idx); err != nil {
		return err
	}

	fmt.Printf("  peak bloom: %.1f µg/l at km %.0f on %v\n", a.PeakChl, a.PeakRkm, a.PeakDate.Format("2006-01-02"))
	fmt.Printf("  chl-discharge correlation: r=%.2f  rank=%.2f\n", a.Pearson, a.Spearman)
	for _, gr := range a.Gauges {
		fmt.Printf("  %s %d discharge anomaly: %.1f m³/s\n", gr.Name, cfg.BloomYear, gr.Anom)
	}
	return nil
}
