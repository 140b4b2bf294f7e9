package main

import (
	"github.com/spf13/cobra"

	"crosswarped.com/valence/pkg/ruleset"
)

func newCompileCmd(c *cli) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "compile <ruleset>",
		Short: "Validate and compile a ruleset, then report its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd, args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print every module's socket masks")
	return cmd
}

func (c *cli) runCompile(cmd *cobra.Command, path string, verbose bool) error {
	rs, err := ruleset.Load(path)
	if err != nil {
		return err
	}
	if !rs.CompileWithLogger(c.logger) {
		return rs.CompileErr()
	}
	compiled := rs.Compiled()

	printf(cmd, "ruleset %q: %d modules, %d layers\n", rs.Name, compiled.ModuleCount, compiled.LayerCount)
	for li, l := range rs.Layers {
		printf(cmd, "layer %d %q: %d sockets\n", li, l.Name, len(l.Sockets))
		for _, s := range l.Sockets {
			printf(cmd, "  bit %2d  %s\n", s.Bit, s.Name)
		}
	}

	if !verbose {
		return nil
	}
	for m := range compiled.ModuleCount {
		printf(cmd, "module %d %q weight=%g spawns=[%d,%d]\n", m, compiled.ModuleNames[m],
			compiled.ModuleWeights[m], compiled.ModuleMinSpawns[m], compiled.ModuleMaxSpawns[m])
		for l := range compiled.LayerCount {
			printf(cmd, "  %s: %s\n", compiled.Layers[l].Name, compiled.GetModuleSocketMask(m, l))
		}
	}
	return nil
}
