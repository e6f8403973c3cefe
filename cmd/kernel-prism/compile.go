package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/clipboard"
	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/input"
	"github.com/joestump/kernel-prism/internal/kernel"
)

type compileOptions struct {
	domain     string
	subject    string
	subjectSet bool
	tags       []string
	custom     []string
	categories []string
	state      string
	copy       bool
	render     string
}

func newCompileCmd(a *app) *cobra.Command {
	var opts compileOptions
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a kernel prompt from flags",
		Example: `  kernel-prism compile --subject "a red fox" --tag "Oil Painting" --tag "Golden Hour"
  kernel-prism compile --domain app --subject "Yoga Tracker" --custom features="Habit streaks"
  kernel-prism compile --domain free --category "Mood & Tone" --custom "Mood & Tone=Calm" --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.subjectSet = cmd.Flags().Changed("subject")
			ws, err := loadState(opts.state)
			if err != nil {
				return err
			}
			if err := applyCompileOptions(ws, opts); err != nil {
				return err
			}
			if err := saveState(opts.state, ws); err != nil {
				return err
			}

			prompt := ws.Prompt()
			out := cmd.OutOrStdout()
			writePrompt(out, prompt)

			if opts.copy {
				if err := clipboard.Copy(prompt); err != nil {
					// Copy failure is a notice; the prompt was already printed.
					fmt.Fprintf(cmd.ErrOrStderr(), "notice: %v\n", err)
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
				}
			}

			if opts.render != "" {
				return renderTo(cmd, a, prompt, opts.render)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.domain, "domain", "d", "", "domain: image, app or free (default: image, or the saved state's)")
	f.StringVarP(&opts.subject, "subject", "s", "", "subject text")
	f.StringArrayVarP(&opts.tags, "tag", "t", nil, "toggle a tag in the active domain (repeatable)")
	f.StringArrayVar(&opts.custom, "custom", nil, "add a custom tag as CATEGORY=TAG; CATEGORY is an id or a --category name (repeatable)")
	f.StringArrayVar(&opts.categories, "category", nil, "create a custom category (repeatable)")
	f.StringVar(&opts.state, "state", "", "load and save the workspace as JSON at this path")
	f.BoolVar(&opts.copy, "copy", false, "copy the prompt to the system clipboard")
	f.StringVar(&opts.render, "render", "", "render the prompt to an image file (needs an API key)")
	return cmd
}

// applyCompileOptions applies flags in a fixed order: domain, new categories,
// custom tags, toggles, then subject.
func applyCompileOptions(ws *kernel.Workspace, opts compileOptions) error {
	if opts.domain != "" {
		d, err := kernel.ParseDomain(opts.domain)
		if err != nil {
			return err
		}
		ws.SetDomain(d)
	}

	created := make(map[string]string, len(opts.categories))
	for _, raw := range opts.categories {
		name, err := input.CategoryName(raw)
		if err != nil {
			return fmt.Errorf("--category %q: %w", raw, err)
		}
		created[name] = ws.CreateCategory(name).ID
	}

	for _, raw := range opts.custom {
		ref, tag, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("--custom %q: want CATEGORY=TAG", raw)
		}
		ref = strings.TrimSpace(ref)
		tag, err := input.Tag(tag)
		if err != nil {
			return fmt.Errorf("--custom %q: %w", raw, err)
		}
		id, ok := created[ref]
		if !ok {
			c, found := findCategory(ws, ref)
			if !found {
				return fmt.Errorf("--custom %q: no category %q in the %s domain", raw, ref, ws.Domain())
			}
			id = c.ID
		}
		ws.AddCustomTag(id, tag)
	}

	for _, tag := range opts.tags {
		ws.ToggleTag(tag)
	}

	if opts.subjectSet {
		subject, err := input.Subject(opts.subject)
		if err != nil {
			return err
		}
		ws.SetSubject(subject)
	}
	return nil
}

// findCategory looks a category up by id, then by exact label.
func findCategory(ws *kernel.Workspace, ref string) (kernel.Category, bool) {
	st := ws.State(ws.Domain())
	if c, ok := st.Category(ref); ok {
		return c, true
	}
	for _, c := range st.Categories {
		if c.Label == ref {
			return c, true
		}
	}
	return kernel.Category{}, false
}

func loadState(path string) (*kernel.Workspace, error) {
	ws := kernel.New()
	if path == "" {
		return ws, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ws, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}
	return ws, nil
}

func saveState(path string, ws *kernel.Workspace) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func renderTo(cmd *cobra.Command, a *app, prompt, path string) error {
	svc, err := imagegen.New(cmd.Context(), a.cfg.ImageGen, a.logger)
	if err != nil {
		return err
	}
	img, err := svc.Render(cmd.Context(), prompt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return err
	}
	a.logger.Info("image written", zap.String("path", path), zap.String("mime", img.MIMEType), zap.Int("bytes", len(img.Data)))
	return nil
}

// writePrompt prints prompt followed by exactly one line break.
func writePrompt(w io.Writer, prompt string) {
	fmt.Fprint(w, prompt)
	if !strings.HasSuffix(prompt, "\n") {
		fmt.Fprintln(w)
	}
}
