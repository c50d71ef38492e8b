package model

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Article is a news article as delivered by the ingestion collaborator.
// It is immutable once ingested; the archive row is upserted by ID.
type Article struct {
	ID            string    `gorm:"primaryKey;size:32" json:"id"`
	Title         string    `gorm:"size:512;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	URL           string    `gorm:"size:1024;not null" json:"url"`
	Source        string    `gorm:"size:256;index" json:"source"`
	PublishedDate string    `gorm:"size:64" json:"published_date"`
	Summary       string    `gorm:"type:text" json:"summary"`
	WordCount     int       `json:"word_count"`
	IngestedAt    time.Time `gorm:"autoCreateTime" json:"ingested_at"`
}

// ArticleID derives the stable article id from the source URL.
func ArticleID(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// SourceDomain extracts the source domain from a URL, without the www prefix.
func SourceDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
