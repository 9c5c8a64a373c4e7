package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soypat/railkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate every part and write its STL file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, railkit.Roles)
	},
}

var exportRoles []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate and write the STL files of selected parts",
	Example: `  railkit export --role connector
  railkit export --role rail --role cover -o build`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := make([]railkit.Role, 0, len(exportRoles))
		for _, s := range exportRoles {
			role, err := railkit.ParseRole(s)
			if err != nil {
				return err
			}
			roles = append(roles, role)
		}
		return runGenerate(cmd, roles)
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportRoles, "role", []string{"rail"}, "Part to export: rail, cover or connector")
}

func runGenerate(cmd *cobra.Command, roles []railkit.Role) error {
	p, err := resolveParams(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(timeout)
	defer cancel()

	ws := railkit.NewWorkspace(railkit.WithLogger(logger))
	defer ws.Close()
	if _, err := ws.Generate(ctx, p, false); err != nil {
		return err
	}
	return writeParts(ws, outDir, roles)
}

// writeParts exports roles of the workspace's full generation into dir.
func writeParts(ws *railkit.Workspace, dir string, roles []railkit.Role) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, role := range roles {
		path := filepath.Join(dir, railkit.Filename(role))
		if err := writePart(ws, path, role); err != nil {
			return fmt.Errorf("%v: %w", role, err)
		}
		logger.Info("wrote part", zap.Stringer("role", role), zap.String("path", path))
	}
	return nil
}

func writePart(ws *railkit.Workspace, path string, role railkit.Role) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := ws.Export(f, role); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
