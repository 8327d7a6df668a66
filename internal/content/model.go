// Package content holds the immutable topic and article catalog the site is
// built from. It is loaded once at start-up and never modified afterwards.
package content

// Article is a published piece of educational content.
type Article struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	TopicSlug   string   `yaml:"topicSlug" json:"topicSlug"`
	Date        string   `yaml:"date" json:"date"`
	ReadTime    string   `yaml:"readTime" json:"readTime"`
	Content     string   `yaml:"content" json:"content"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Clone returns a copy that shares nothing mutable with a. Tags is never nil
// in the copy, so it encodes as a JSON array.
func (a Article) Clone() Article {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	a.Tags = tags
	return a
}

// Topic groups articles. ArticleCount is derived from the catalog at load
// time and is never read from source files.
type Topic struct {
	Slug         string `yaml:"slug" json:"slug"`
	Title        string `yaml:"title" json:"title"`
	Description  string `yaml:"description" json:"description"`
	Icon         string `yaml:"icon" json:"icon"`
	ArticleCount int    `yaml:"-" json:"articleCount"`
}

// Stats summarises the catalog.
type Stats struct {
	TotalTopics     int            `json:"totalTopics"`
	TotalArticles   int            `json:"totalArticles"`
	ArticlesByTopic map[string]int `json:"articlesByTopic"`
	Tags            []string       `json:"tags"`
	TotalTags       int            `json:"totalTags"`
}

func cloneArticles(in []Article) []Article {
	out := make([]Article, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
