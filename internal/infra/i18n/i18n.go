// Package i18n carga los catálogos YAML embebidos y resuelve claves "a.b" con
// placeholders {{nombre}}. Orden de búsqueda: locale pedido, mismo idioma, fallback, la clave.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

type Bundle struct {
	fallback string
	catalogs map[string]map[string]string
}

// Load lee todos los catálogos embebidos.
func Load(fallback string) (*Bundle, error) {
	return LoadFS(locales, "locales", fallback)
}

func LoadFS(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	b := &Bundle{fallback: fallback, catalogs: map[string]map[string]string{}}
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, errors.Wrapf(err, "leyendo %s", f)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, errors.Wrapf(err, "parseando %s", f)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		b.catalogs[strings.TrimSuffix(path.Base(f), ".yaml")] = flat
	}
	if _, ok := b.catalogs[fallback]; !ok {
		return nil, errors.Newf("no hay catálogo para el locale por defecto %q", fallback)
	}
	return b, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flatten(key, x, out)
		case string:
			out[key] = x
		default:
			out[key] = fmt.Sprint(x)
		}
	}
}

// Locales devuelve los locales cargados, ordenados.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.catalogs))
	for l := range b.catalogs {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (b *Bundle) lookup(locale, key string) (string, bool) {
	if c, ok := b.catalogs[locale]; ok {
		if s, ok := c[key]; ok {
			return s, true
		}
	}
	if lang, _, _ := strings.Cut(locale, "-"); lang != "" {
		for _, l := range b.Locales() {
			if l != locale && strings.HasPrefix(l, lang+"-") {
				if s, ok := b.catalogs[l][key]; ok {
					return s, true
				}
			}
		}
	}
	s, ok := b.catalogs[b.fallback][key]
	return s, ok
}

// Translate nunca falla: sin traducción devuelve la clave.
func (b *Bundle) Translate(locale, key string, args map[string]any) string {
	s, ok := b.lookup(locale, key)
	if !ok {
		return key
	}
	for name, v := range args {
		s = strings.ReplaceAll(s, "{{"+name+"}}", fmt.Sprint(v))
	}
	return s
}
