package enhancer

import "math"

// MaxMissingKeywords bounds the missing-keyword list of a score.
const MaxMissingKeywords = 25

// KeywordScore is the coverage of job description keywords within a resume.
type KeywordScore struct {
	Score   int      // 0-100
	Missing []string // job description keywords absent from the resume, first appearance order
}

// ScoreKeywords computes the percentage of job description keywords that also
// appear in the resume. A job description without keywords scores 0 with no
// missing keywords; that is the "no job description" case, not an error.
func ScoreKeywords(resumeText, jobDescription string) KeywordScore {
	resume := KeywordSet(resumeText)
	jd := Keywords(jobDescription)
	if len(jd) == 0 {
		return KeywordScore{Score: 0, Missing: []string{}}
	}

	hits := 0
	missing := make([]string, 0)
	for _, kw := range jd {
		if _, ok := resume[kw]; ok {
			hits++
			continue
		}
		missing = append(missing, kw)
	}

	if len(missing) > MaxMissingKeywords {
		missing = missing[:MaxMissingKeywords]
	}

	return KeywordScore{
		Score:   roundPercent(hits, len(jd)),
		Missing: missing,
	}
}

// roundPercent returns part/total as a percentage rounded half up.
func roundPercent(part, total int) int {
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}
