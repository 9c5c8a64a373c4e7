package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/railkit"
	"github.com/soypat/railkit/preview"
	"github.com/soypat/railkit/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

var (
	previewRole   string
	previewFormat string
	previewSize   float64
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Plot a part's cross section with its dimensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveParams(cmd)
		if err != nil {
			return err
		}
		role, err := railkit.ParseRole(previewRole)
		if err != nil {
			return err
		}
		plt, dims, err := preview.Profile(p, role)
		if err != nil {
			return err
		}
		logger.Info("profile",
			zap.Stringer("role", role),
			zap.Float64("width", dims.Width),
			zap.Float64("height", dims.Height),
		)
		return savePlot(plt, filepath.Join(outDir, role.String()+"_profile."+previewFormat))
	},
}

var dxfCmd = &cobra.Command{
	Use:   "dxf FILE",
	Short: "Plot a profile read from a DXF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		prof, warnings, err := profile.FromDXF(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		for _, w := range warnings {
			logger.Warn("dxf", zap.String("file", args[0]), zap.String("warning", w))
		}
		plt, dims, err := preview.Plot([]profile.Profile{prof}, nil)
		if err != nil {
			return err
		}
		plt.Title.Text = filepath.Base(args[0])
		logger.Info("dxf profile",
			zap.Int("segments", len(prof.Segments)),
			zap.Bool("closed", prof.Closed),
			zap.Float64("width", dims.Width),
			zap.Float64("height", dims.Height),
		)
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		return savePlot(plt, filepath.Join(outDir, name+"_profile."+previewFormat))
	},
}

var (
	snapshotRole string
	snapshotView = preview.DefaultView()
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render a shaded PNG of a generated part",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveParams(cmd)
		if err != nil {
			return err
		}
		role, err := railkit.ParseRole(snapshotRole)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(timeout)
		defer cancel()
		ws := railkit.NewWorkspace(railkit.WithLogger(logger))
		defer ws.Close()
		g, err := ws.Generate(ctx, p, false)
		if err != nil {
			return err
		}
		img, err := preview.Snapshot(g.Mesh(role), snapshotView)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(outDir, role.String()+".png")
		if err := preview.SavePNG(path, img); err != nil {
			return err
		}
		logger.Info("wrote snapshot", zap.Stringer("role", role), zap.String("path", path))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{previewCmd, dxfCmd} {
		c.Flags().StringVar(&previewFormat, "format", "svg", "Image format: svg, png, pdf or eps")
		c.Flags().Float64Var(&previewSize, "size", 4, "Image side in inches")
	}
	previewCmd.Flags().StringVar(&previewRole, "role", "rail", "Part to plot: rail, cover or connector")
	snapshotCmd.Flags().StringVar(&snapshotRole, "role", "rail", "Part to render: rail, cover or connector")
	snapshotCmd.Flags().IntVar(&snapshotView.Width, "width", snapshotView.Width, "Image width in pixels")
	snapshotCmd.Flags().IntVar(&snapshotView.Height, "height", snapshotView.Height, "Image height in pixels")
}

func savePlot(plt *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := preview.Write(f, plt, vg.Length(previewSize)*vg.Inch, previewFormat); err != nil {
		f.Close()
		return err
	}
	logger.Info("wrote plot", zap.String("path", path))
	return f.Close()
}
