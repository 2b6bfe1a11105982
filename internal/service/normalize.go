package service

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const trackingPrefix = "utm_"

var socialDomains = map[string][]string{
	"facebook":  {"facebook.com", "fb.com", "fb.me"},
	"instagram": {"instagram.com", "instagr.am"},
	"tiktok":    {"tiktok.com"},
}

// NormalizeURLs trims every entry, drops empty ones and removes duplicates
// while keeping first-seen order.
func NormalizeURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// canonicalSiteURL gives scheme-less entries an https scheme and converts
// internationalised host names to their ASCII form. Unparseable input is
// returned trimmed but otherwise untouched.
func canonicalSiteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := u.Hostname()
	ascii, err := idnaProfile.ToASCII(host)
	if err != nil || ascii == "" || ascii == host {
		return raw
	}
	if port := u.Port(); port != "" {
		u.Host = ascii + ":" + port
	} else {
		u.Host = ascii
	}
	return u.String()
}

// normalizeRecord turns the runner's record into sorted, deduplicated sets.
// Emails are lower-cased and must have a plausible domain. Social links must
// point at their platform and lose utm_ tracking parameters.
func normalizeRecord(rec entity.ResultRecord) entity.ResultRecord {
	rec.Emails = cleanEmails(rec.Emails)
	rec.Facebook = cleanSocialLinks("facebook", rec.Facebook)
	rec.Instagram = cleanSocialLinks("instagram", rec.Instagram)
	rec.TikTok = cleanSocialLinks("tiktok", rec.TikTok)
	if rec.ScreenshotRef != nil {
		ref := strings.TrimSpace(*rec.ScreenshotRef)
		if ref == "" {
			rec.ScreenshotRef = nil
		} else {
			rec.ScreenshotRef = &ref
		}
	}
	rec.Message = strings.TrimSpace(rec.Message)
	return rec
}

func cleanEmails(emails []string) []string {
	valid := make([]string, 0, len(emails))
	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		at := strings.LastIndex(email, "@")
		if at <= 0 {
			continue
		}
		domain, err := idnaProfile.ToASCII(email[at+1:])
		if err != nil || domain == "" {
			continue
		}
		email = email[:at+1] + domain
		if !emailPattern.MatchString(email) {
			continue
		}
		valid = append(valid, email)
	}
	return stringSet(valid)
}

func cleanSocialLinks(platform string, links []string) []string {
	valid := make([]string, 0, len(links))
	for _, raw := range links {
		u, err := sanitizeURL(raw)
		if err != nil || !hostMatches(u.Hostname(), socialDomains[platform]) {
			continue
		}
		stripTracking(u)
		valid = append(valid, u.String())
	}
	return stringSet(valid)
}

func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return false
	}
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	return u, nil
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) || key == "fbclid" {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func stringSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
