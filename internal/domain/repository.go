// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// RepositoryReference identifies a hosted repository by owner and name.
// Raw keeps the string it was parsed from so errors can name it verbatim.
type RepositoryReference struct {
	Owner string
	Name  string
	Raw   string
}

// ParseReference builds a RepositoryReference from a URL-like string such as
// "https://github.com/owner/repo" or "owner/repo". Only the last two path
// segments are used.
func ParseReference(raw string) (RepositoryReference, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return RepositoryReference{}, fmt.Errorf("invalid repository reference %q: expected owner/name", raw)
	}
	owner, name := parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return RepositoryReference{}, fmt.Errorf("invalid repository reference %q: empty owner or name", raw)
	}
	return RepositoryReference{Owner: owner, Name: name, Raw: raw}, nil
}

func (r RepositoryReference) String() string {
	return r.Owner + "/" + r.Name
}

// RepositorySnapshot is the repository metadata document fetched once per run.
type RepositorySnapshot struct {
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	Description   string `json:"description"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
}

// Commit, Issue and Branch are only ever counted; they carry just enough
// fields to be recognisable in logs and JSON output.
type Commit struct {
	SHA     string    `json:"sha"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

type Issue struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	State         string `json:"state"`
	IsPullRequest bool   `json:"is_pull_request"`
}

type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// Listing is the first page of a list endpoint.
// Partial is set when the fetch failed and Items was replaced by an empty
// slice, so callers can tell "no activity" apart from "could not fetch".
type Listing[T any] struct {
	Items   []T  `json:"items"`
	Partial bool `json:"partial"`
}

// Len returns the number of fetched items.
func (l Listing[T]) Len() int {
	return len(l.Items)
}

// FailedListing is the soft-fail substitute for a list endpoint that did not return 200.
func FailedListing[T any]() Listing[T] {
	return Listing[T]{Items: []T{}, Partial: true}
}
