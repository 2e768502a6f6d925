package cmd

import (
	"bytes"

	"github.com/go-notification-hub/internal/domain"
	"github.com/spf13/cobra"
)

func newTemplateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Manage notification templates",
	}
	cmd.AddCommand(
		newTemplateSaveCmd(rt),
		newTemplateListCmd(rt),
		newTemplateShowCmd(rt),
		newTemplateRenderCmd(rt),
		newTemplateImportCmd(rt),
	)
	return cmd
}

func newTemplateSaveCmd(rt *runtime) *cobra.Command {
	var in domain.TemplateInput
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Create or replace a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			t, err := rt.app.Templates.Save(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Channel, "channel", "", "default channel for the template")
	f.StringVar(&in.Subject, "subject", "", "subject pattern")
	f.StringVar(&in.Body, "body", "", "body pattern")
	return cmd
}

func newTemplateListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := rt.app.Templates.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, ts)
		},
	}
}

func newTemplateShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rt.app.Templates.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		},
	}
}

func newTemplateRenderCmd(rt *runtime) *cobra.Command {
	var (
		rawVars string
		pairs   []string
	)
	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Preview a template; unresolved placeholders are listed, not rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(rawVars, pairs)
			if err != nil {
				return err
			}
			out, err := rt.app.Templates.RenderByName(cmd.Context(), args[0], vars)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&rawVars, "vars", "", "variables as a JSON object")
	cmd.Flags().StringArrayVar(&pairs, "var", nil, "variable as key=value, dotted keys nest (repeatable)")
	return cmd
}

func newTemplateImportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import templates from a YAML bundle (\"-\" reads stdin)",
		Long: `import reads a YAML document of the form

  templates:
    - name: welcome
      channel: email
      subject: "Hi {{name}}"
      body: "Welcome, {{name}}!"

Templates are saved in order; the first invalid entry stops the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			saved, err := rt.app.Templates.Import(cmd.Context(), bytes.NewReader(data))
			if perr := printJSON(cmd, saved); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
}
