package content

import (
	"fmt"
	"sort"
)

// Catalog is the validated, read-only set of topics and articles. All
// accessors return copies, so it is safe for concurrent use without locks.
type Catalog struct {
	topics       []Topic
	articles     []Article
	topicIndex   map[string]int
	articleIndex map[string]int
}

// NewCatalog validates topics and articles and derives each topic's
// ArticleCount.
func NewCatalog(topics []Topic, articles []Article) (*Catalog, error) {
	if err := validate(topics, articles); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}

	c := &Catalog{
		topics:       make([]Topic, len(topics)),
		articles:     cloneArticles(articles),
		topicIndex:   make(map[string]int, len(topics)),
		articleIndex: make(map[string]int, len(articles)),
	}
	copy(c.topics, topics)

	counts := make(map[string]int, len(topics))
	for i, a := range c.articles {
		c.articleIndex[a.Slug] = i
		counts[a.TopicSlug]++
	}
	for i := range c.topics {
		c.topics[i].ArticleCount = counts[c.topics[i].Slug]
		c.topicIndex[c.topics[i].Slug] = i
	}
	return c, nil
}

// Articles returns every article in canonical order.
func (c *Catalog) Articles() []Article {
	return cloneArticles(c.articles)
}

func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

func (c *Catalog) ArticleBySlug(slug string) (Article, bool) {
	i, ok := c.articleIndex[slug]
	if !ok {
		return Article{}, false
	}
	return c.articles[i].Clone(), true
}

func (c *Catalog) TopicBySlug(slug string) (Topic, bool) {
	i, ok := c.topicIndex[slug]
	if !ok {
		return Topic{}, false
	}
	return c.topics[i], true
}

// ByTopic returns the topic's articles in canonical order. Unknown topics
// yield an empty slice.
func (c *Catalog) ByTopic(topicSlug string) []Article {
	out := []Article{}
	for _, a := range c.articles {
		if a.TopicSlug == topicSlug {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.articles)
}

// Stats counts articles per topic and collects the sorted set of distinct
// tags.
func (c *Catalog) Stats() Stats {
	byTopic := make(map[string]int, len(c.topics))
	for _, t := range c.topics {
		byTopic[t.Slug] = t.ArticleCount
	}
	seen := make(map[string]struct{})
	tags := []string{}
	for _, a := range c.articles {
		for _, tag := range a.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return Stats{
		TotalTopics:     len(c.topics),
		TotalArticles:   len(c.articles),
		ArticlesByTopic: byTopic,
		Tags:            tags,
		TotalTags:       len(tags),
	}
}
