// Package profile looks up and updates member profile documents.
package profile

import "strings"

// Record is a member's profile document.
type Record struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Social1 string `json:"social1,omitempty"` // Instagram URL
	Social2 string `json:"social2,omitempty"` // Discord handle
	Text    string `json:"text,omitempty"`    // Questionnaire blob
}

// Instagram returns the stored Instagram URL.
func (r *Record) Instagram() string {
	return r.Social1
}

// Discord returns the stored Discord handle.
func (r *Record) Discord() string {
	return r.Social2
}

// InstagramUsername returns the username portion of the Instagram URL.
func (r *Record) InstagramUsername() string {
	return InstagramUsername(r.Social1)
}

// InstagramUsername extracts the handle after "instagram.com/".
// Values without that marker are returned unchanged.
func InstagramUsername(url string) string {
	_, after, found := strings.Cut(url, "instagram.com/")
	if !found || after == "" {
		return url
	}
	return after
}

// InstagramURL builds the canonical profile URL for a username.
func InstagramURL(username string) string {
	return "https://www.instagram.com/" + username
}

// Submission is the payload written by Save.
type Submission struct {
	UserID  string `json:"user_id" validate:"required"`
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Text    string `json:"text"`
	Social1 string `json:"social1"`
	Social2 string `json:"social2"`
}

// documentResponse is the wire format of /find_document.
// Some deployments wrap the payload in a "data" envelope.
type documentResponse struct {
	Results map[string]*Record `json:"results"`
	Data    *struct {
		Results map[string]*Record `json:"results"`
	} `json:"data,omitempty"`
}

// results returns whichever results map the response carried.
func (d *documentResponse) results() map[string]*Record {
	if d.Results != nil {
		return d.Results
	}
	if d.Data != nil {
		return d.Data.Results
	}
	return nil
}
