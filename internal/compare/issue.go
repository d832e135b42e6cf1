package compare

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/conformia/internal/model"
)

// issueNamespace scopes the name-based issue ids
var issueNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/conformia/issue"))

// assignIDs gives every issue a UUIDv5 derived from its position in the
// emission sequence and its content
func assignIDs(issues []model.Issue) {
	for i := range issues {
		issues[i].ID = issueID(i, issues[i]).String()
	}
}

func issueID(seq int, issue model.Issue) uuid.UUID {
	loc := issue.Location
	parts := []string{
		strconv.Itoa(seq),
		string(issue.Severity),
		string(issue.Category),
		string(loc.Section),
		strconv.Itoa(loc.BlockIndex),
		optionalInt(loc.RunIndex),
		optionalInt(loc.TableIndex),
		optionalInt(loc.PageNumber),
		issue.Message,
		issue.Hint,
		issue.TemplateValue,
		issue.CandidateValue,
	}
	return uuid.NewSHA1(issueNamespace, []byte(strings.Join(parts, "\x1f")))
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
