package fetch

import (
	"net/url"
	"strings"
)

// Platform is an applicant tracking system or job board with known page structure.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformWorkable        Platform = "workable"
	PlatformHandshake       Platform = "handshake"
	PlatformUnknown         Platform = "unknown"
)

// platformRules describes where a platform puts the posting and what to strip around it.
type platformRules struct {
	hosts   []string // host suffixes
	content []string
	noise   []string
}

var platforms = map[Platform]platformRules{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description"},
		noise:   []string{".apply-section", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']", ".ashby-job-posting-right-pane"},
	},
	PlatformSmartRecruiters: {
		hosts:   []string{"smartrecruiters.com"},
		content: []string{"[itemprop='description']", ".job-sections"},
		noise:   []string{".job-apply-section", ".sticky-apply"},
	},
	PlatformWorkable: {
		hosts:   []string{"workable.com"},
		content: []string{"[data-ui='job-description']", "[data-ui='job-breakdown']"},
		noise:   []string{"[data-ui='apply-button']"},
	},
	PlatformHandshake: {
		hosts:   []string{"joinhandshake.com"},
		content: []string{"[data-hook='job-description']", ".job-description"},
		noise:   []string{"[data-hook='apply-button']", ".employer-reviews"},
	},
}

// commonNoise is stripped from every posting page.
var commonNoise = []string{
	// application forms
	"form", "#application-form", ".application-form", ".apply-button-container", "[data-testid='application-form']",
	// EEO and legal
	".eeo-statement", ".eeo-section", ".legal-disclosure", ".self-identification",
	// sharing and consent
	".social-share", ".share-buttons", ".cookie-consent", ".gdpr-notice",
}

// DetectPlatform identifies the job board from the URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for platform, rules := range platforms {
		for _, suffix := range rules.hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the platform's content selectors followed by the
// generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	specific := platforms[platform].content
	out := make([]string, 0, len(specific)+len(JobPostingSelectors()))
	out = append(out, specific...)
	return append(out, JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns the common noise selectors plus the platform's own.
func PlatformNoiseSelectors(platform Platform) []string {
	specific := platforms[platform].noise
	out := make([]string, 0, len(commonNoise)+len(specific))
	out = append(out, commonNoise...)
	return append(out, specific...)
}
