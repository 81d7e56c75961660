// Package templates renders email bodies from a directory of template files.
//
// Files ending in .tmpl or .gohtml are parsed with html/template and the
// sprig function library. Every other file is a Liquid template, which
// gives Jinja-style {{ name }} substitution and filters:
//
//	<h1>Hi {{ name | escape }}!</h1>
//
// Templates are addressed by their slash-separated path relative to the
// directory, for example "welcome_mail.html" or "billing/invoice.tmpl".
package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/a-h/templ"
	"github.com/osteele/liquid"

	"github.com/dmitrymomot/mailkit/core/component"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrLoad             = errors.New("failed to load templates")
	ErrRender           = errors.New("failed to render template")
)

// Vars are the variables passed to a template.
type Vars = map[string]any

type renderer interface {
	render(vars Vars) (string, error)
}

type liquidTemplate struct {
	tpl *liquid.Template
	// required lists the top-level variables output tags read. It is only
	// set in strict mode, where Liquid itself accepts a missing variable as
	// long as a filter turns it into a value.
	required []string
}

func (t liquidTemplate) render(vars Vars) (string, error) {
	for _, name := range t.required {
		if _, ok := vars[name]; !ok {
			return "", fmt.Errorf("undefined variable %q", name)
		}
	}
	out, err := t.tpl.RenderString(vars)
	if err != nil {
		return "", err
	}
	return out, nil
}

type htmlTemplate struct{ tpl *template.Template }

func (t htmlTemplate) render(vars Vars) (string, error) {
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type options struct {
	fsys    fs.FS
	strict  bool
	filters map[string]any
	funcs   template.FuncMap
}

// Option configures New.
type Option func(*options)

// WithStrictVariables makes rendering fail when a template references a
// variable that was not passed.
func WithStrictVariables() Option {
	return func(o *options) { o.strict = true }
}

// WithFilter registers a Liquid filter, such as "money" or "initials".
func WithFilter(name string, fn any) Option {
	return func(o *options) { o.filters[name] = fn }
}

// WithFuncs adds functions to html/template templates on top of sprig.
func WithFuncs(funcs template.FuncMap) Option {
	return func(o *options) { maps.Copy(o.funcs, funcs) }
}

// WithFS loads templates from fsys instead of the operating system.
// The dir passed to New is then a path inside fsys; use "." for its root.
func WithFS(fsys fs.FS) Option {
	return func(o *options) { o.fsys = fsys }
}

// Templates holds parsed templates. It is safe for concurrent use.
type Templates struct {
	templates map[string]renderer
}

// New parses every regular file under dir.
// Parse errors are reported for the first broken file.
func New(dir string, opts ...Option) (*Templates, error) {
	o := &options{
		filters: make(map[string]any),
		funcs:   make(template.FuncMap),
	}
	for _, opt := range opts {
		opt(o)
	}

	fsys := o.fsys
	root := dir
	if fsys == nil {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrLoad, dir)
		}
		fsys = os.DirFS(dir)
		root = "."
	}

	engine := liquid.NewEngine()
	if o.strict {
		engine.StrictVariables()
	}
	for name, fn := range o.filters {
		engine.RegisterFilter(name, fn)
	}

	funcs := sprig.HtmlFuncMap()
	maps.Copy(funcs, o.funcs)

	t := &Templates{templates: make(map[string]renderer)}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := p
		if root != "." {
			name = strings.TrimPrefix(p, root+"/")
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		switch path.Ext(name) {
		case ".tmpl", ".gohtml":
			tpl := template.New(name).Funcs(funcs)
			if o.strict {
				tpl = tpl.Option("missingkey=error")
			}
			parsed, err := tpl.Parse(string(src))
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			t.templates[name] = htmlTemplate{tpl: parsed}
		default:
			parsed, err := engine.ParseString(string(src))
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			lt := liquidTemplate{tpl: parsed}
			if o.strict {
				lt.required = outputVariables(string(src))
			}
			t.templates[name] = lt
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return t, nil
}

// Render renders the named template with vars.
func (t *Templates) Render(name string, vars Vars) (string, error) {
	tpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	out, err := tpl.render(vars)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrRender, name, err)
	}
	return out, nil
}

// Names returns the names of all loaded templates in sorted order.
func (t *Templates) Names() []string {
	return slices.Sorted(maps.Keys(t.templates))
}

// RenderComponent renders a templ component to a string, for emails built
// from templ components instead of template files.
func RenderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return buf.String(), nil
}

var (
	outputTag   = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][\w-]*)([^}]*)\}\}`)
	withDefault = regexp.MustCompile(`\|\s*default\b`)
	assignedTag = regexp.MustCompile(`\{%-?\s*(?:assign|capture|for|increment|decrement)\s+([A-Za-z_][\w-]*)`)
)

// outputVariables returns the variables {{ }} tags start with, minus names
// the template defines itself, Liquid literals and values piped to default.
func outputVariables(src string) []string {
	local := map[string]bool{
		"true": true, "false": true, "nil": true, "null": true,
		"empty": true, "blank": true, "forloop": true,
	}
	for _, m := range assignedTag.FindAllStringSubmatch(src, -1) {
		local[m[1]] = true
	}

	var names []string
	for _, m := range outputTag.FindAllStringSubmatch(src, -1) {
		if local[m[1]] || withDefault.MatchString(m[2]) || slices.Contains(names, m[1]) {
			continue
		}
		names = append(names, m[1])
	}
	return names
}

// Component registers *Templates loaded from dir.
func Component(dir string, opts ...Option) component.Component {
	return component.ComponentFunc(func(c *component.Container) error {
		return component.Provide(c, func(component.Resolver) (*Templates, error) {
			return New(dir, opts...)
		})
	})
}
