package services

import (
	"strconv"
	"testing"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

func int64p(v int64) *int64 { return &v }

func TestSanitizeDescription(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>real text</p>", "<p>real text</p>"},
		{"<p>real</p><p></p>", "<p>real</p>"},
		{"<p> </p><p>&nbsp;</p><p>kept</p>", "<p>kept</p>"},
		{"  <p></p>  ", ""},
	}
	for _, c := range cases {
		if got := sanitizeDescription(c.in); got != c.want {
			t.Fatalf("sanitize %q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

// testResolver mirrors historyValue without a database: known ids get
// their titles, unknown ids fall back to the raw number.
func testResolver(names map[int64]string) refResolver {
	return func(field string, id *int64) string {
		if id == nil {
			return "None"
		}
		if name, ok := names[*id]; ok {
			return name
		}
		return strconv.FormatInt(*id, 10)
	}
}

func TestDiffIssue_JournalsChangedFields(t *testing.T) {
	author := int64p(7)
	before := domain.Issue{
		ID:              1,
		Title:           "Old title",
		Description:     "text",
		StateCategoryID: int64p(10),
	}
	after := before
	after.Title = "New title"
	after.StateCategoryID = int64p(11)
	after.AssigneeID = int64p(3)
	after.UpdatedByID = author

	resolve := testResolver(map[int64]string{10: "Todo", 11: "Done", 3: "Mary Smith"})
	entries := diffIssue(before, after, resolve)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %#v", len(entries), entries)
	}

	byField := map[string]domain.IssueHistoryEntry{}
	for _, e := range entries {
		byField[e.EditedField] = e
		if e.IssueID != after.ID {
			t.Fatalf("entry bound to wrong issue: %#v", e)
		}
		if e.ChangedByID == nil || *e.ChangedByID != *author {
			t.Fatalf("entry missing author: %#v", e)
		}
	}
	if byField["Title"].BeforeValue != "Old title" || byField["Title"].AfterValue != "New title" {
		t.Fatalf("title diff wrong: %#v", byField["Title"])
	}
	if byField["State"].BeforeValue != "Todo" || byField["State"].AfterValue != "Done" {
		t.Fatalf("state diff wrong: %#v", byField["State"])
	}
	if byField["Assignee"].BeforeValue != "None" || byField["Assignee"].AfterValue != "Mary Smith" {
		t.Fatalf("assignee diff wrong: %#v", byField["Assignee"])
	}
}

func TestDiffIssue_UnresolvableRefKeepsID(t *testing.T) {
	before := domain.Issue{ID: 1, Title: "Same"}
	after := before
	after.TypeCategoryID = int64p(99)

	entries := diffIssue(before, after, testResolver(nil))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %#v", entries)
	}
	if entries[0].BeforeValue != "None" || entries[0].AfterValue != "99" {
		t.Fatalf("type diff wrong: %#v", entries[0])
	}
}

func TestDiffIssue_NoChangesNoEntries(t *testing.T) {
	issue := domain.Issue{ID: 1, Title: "Same", StateCategoryID: int64p(2)}
	if entries := diffIssue(issue, issue, testResolver(nil)); len(entries) != 0 {
		t.Fatalf("expected no entries, got %#v", entries)
	}
}

func TestMentionedPersonIDs(t *testing.T) {
	body := `<p>Ping <span data-mentioned-user-id="42">Alice</span> and ` +
		`<span data-mentioned-user-id="17">Bob</span>, again ` +
		`<span data-mentioned-user-id="42">Alice</span></p>`

	got := MentionedPersonIDs(body)
	want := []int64{42, 17}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if got := MentionedPersonIDs("<p>no mentions here</p>"); got != nil {
		t.Fatalf("expected no mentions, got %v", got)
	}
}
