package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data
var embedded embed.FS

const (
	topicsFile  = "topics.yaml"
	articlesDir = "articles"
	dateLayout  = "2006-01-02"
)

// Embedded returns the content compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadDefault loads from dir, or from the embedded content when dir is "".
func LoadDefault(dir string) (*Catalog, error) {
	if dir == "" {
		return Load(Embedded())
	}
	return Load(os.DirFS(dir))
}

// Load reads topics.yaml and every articles/*.yaml from fsys. Articles keep
// the lexical order of their file names, which is the catalog's canonical
// order.
func Load(fsys fs.FS) (*Catalog, error) {
	topics, err := loadTopics(fsys)
	if err != nil {
		return nil, err
	}
	articles, err := loadArticles(fsys)
	if err != nil {
		return nil, err
	}
	return NewCatalog(topics, articles)
}

func loadTopics(fsys fs.FS) ([]Topic, error) {
	data, err := fs.ReadFile(fsys, topicsFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", topicsFile, err)
	}
	var topics []Topic
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", topicsFile, err)
	}
	return topics, nil
}

func loadArticles(fsys fs.FS) ([]Article, error) {
	entries, err := fs.ReadDir(fsys, articlesDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", articlesDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	articles := make([]Article, 0, len(names))
	for _, name := range names {
		p := path.Join(articlesDir, name)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var a Article
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		a.Content = strings.TrimRight(a.Content, "\n")
		articles = append(articles, a)
	}
	return articles, nil
}

// validate reports every problem in the catalog at once.
func validate(topics []Topic, articles []Article) error {
	var errs []error
	topicSlugs := make(map[string]bool, len(topics))
	for i, t := range topics {
		switch {
		case t.Slug == "":
			errs = append(errs, fmt.Errorf("topic %d: slug is required", i))
		case topicSlugs[t.Slug]:
			errs = append(errs, fmt.Errorf("topic %q: duplicate slug", t.Slug))
		}
		if t.Title == "" {
			errs = append(errs, fmt.Errorf("topic %q: title is required", t.Slug))
		}
		topicSlugs[t.Slug] = true
	}

	articleSlugs := make(map[string]bool, len(articles))
	for i, a := range articles {
		id := a.Slug
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Errorf("article %s: slug is required", id))
		} else if articleSlugs[a.Slug] {
			errs = append(errs, fmt.Errorf("article %q: duplicate slug", a.Slug))
		}
		articleSlugs[a.Slug] = true

		if a.Title == "" {
			errs = append(errs, fmt.Errorf("article %s: title is required", id))
		}
		if !topicSlugs[a.TopicSlug] {
			errs = append(errs, fmt.Errorf("article %s: unknown topic %q", id, a.TopicSlug))
		}
		if _, err := time.Parse(dateLayout, a.Date); err != nil {
			errs = append(errs, fmt.Errorf("article %s: date %q is not YYYY-MM-DD", id, a.Date))
		}
	}
	return errors.Join(errs...)
}
