package report

import (
	"net/url"
	"strconv"
	"strings"
)

// ViewURL returns the front-end link of a document.
func ViewURL(siteURL string, id int64) string {
	if siteURL == "" {
		return ""
	}
	return strings.TrimSuffix(siteURL, "/") + "/?p=" + strconv.FormatInt(id, 10)
}

// EditURL returns the admin edit link of a document.
func EditURL(siteURL string, id int64) string {
	if siteURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("post", strconv.FormatInt(id, 10))
	q.Set("action", "edit")
	return strings.TrimSuffix(siteURL, "/") + "/wp-admin/post.php?" + q.Encode()
}

// AttachLinks fills the view and edit links of every entry. An empty site
// URL leaves them blank.
func (r *Report) AttachLinks(siteURL string) {
	if siteURL == "" {
		return
	}
	for bi := range r.Buckets {
		for gi := range r.Buckets[bi].Groups {
			entries := r.Buckets[bi].Groups[gi].Entries
			for i := range entries {
				entries[i].ViewURL = ViewURL(siteURL, entries[i].ID)
				entries[i].EditURL = EditURL(siteURL, entries[i].ID)
			}
		}
	}
}
