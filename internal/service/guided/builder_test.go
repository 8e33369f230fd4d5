package guided

import (
	"strings"
	"testing"

	guidedSvc "studioflow/internal/domain/services/guided"
)

const testCatalogYAML = `
name: test
intro: "Hi."
questions:
  - field: client_name
    prompt: "Client name?"
    required: true
  - field: event_type
    prompt: "Event type?"
    type: choice
    options: ["wedding", "portrait"]
  - field: coverage_hours
    prompt: "Hours?"
    type: number
    default: "8"
    condition: "event_type == wedding"
  - field: deposit_percent
    prompt: "Deposit?"
    type: number
  - field: second_shooter
    prompt: "Second shooter?"
    type: boolean
    options: ["true", "false"]
addons:
  Second Shooter:
    set:
      second_shooter: true
    clause: "A second shooter attends."
  Rush Delivery:
    set:
      delivery_weeks: 2
risk_checks:
  - label: "Deposit of at least 25%"
    when: "deposit_percent >= 25"
  - label: "Second shooter booked"
    when: "second_shooter"
contract:
  title: "{{client_name}} {{event_type}}"
  body: "Terms. {{additional_terms}} [[signature:client]]"
  client_name_field: client_name
  client_email_field: client_email
  terms_field: additional_terms
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return cat
}

func lastMessage(b *Builder) guidedSvc.Message {
	v := b.View("")
	return v.Transcript[len(v.Transcript)-1]
}

func TestBuilderAsksFirstQuestion(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	view := b.View("s1")

	if view.Phase != guidedSvc.PhaseAsking || view.Cursor != 0 || !view.AwaitingInput {
		t.Fatalf("start = %+v", view)
	}
	if view.Question == nil || view.Question.Field != "client_name" {
		t.Fatalf("question = %+v", view.Question)
	}
	if len(view.Transcript) != 2 || view.Transcript[0].Text != "Hi." {
		t.Fatalf("transcript = %+v", view.Transcript)
	}
	if view.CanUndo || view.CanRedo {
		t.Error("fresh build has nothing to undo or redo")
	}
}

func TestBuilderSkipsQuestionsWhoseConditionFails(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("portrait")

	if q := b.Current(); q == nil || q.Field != "deposit_percent" {
		t.Fatalf("current = %+v, want deposit_percent", q)
	}
	if b.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", b.Cursor())
	}
}

func TestBuilderBlankAnswerUsesDefault(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("wedding")
	b.Submit("")

	if got := b.Values()["coverage_hours"]; got != 8.0 {
		t.Fatalf("coverage_hours = %#v, want 8", got)
	}
}

func TestBuilderBlankAnswerUsesSuggestion(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.SetSuggestions([3]string{"portrait", "wedding", ""})
	b.Submit("  ")

	if got := b.Values()["event_type"]; got != "portrait" {
		t.Fatalf("event_type = %#v, want the first suggestion", got)
	}
}

func TestBuilderRequiredQuestionRejectsBlank(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("")

	if b.Cursor() != 0 || b.View("").CanUndo {
		t.Fatal("a rejected blank must not advance or record history")
	}
	if !strings.Contains(lastMessage(b).Text, "needs an answer") {
		t.Errorf("message = %q", lastMessage(b).Text)
	}
}

func TestBuilderInvalidAnswerReasks(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("birthday")

	if b.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", b.Cursor())
	}
	if _, ok := b.Values()["event_type"]; ok {
		t.Fatal("rejected answer was stored")
	}
	if msg := lastMessage(b); msg.Role != guidedSvc.RoleAssistant || !strings.Contains(msg.Text, "wedding, portrait") {
		t.Errorf("message = %+v", msg)
	}
}

func TestBuilderUnknownAddonListsNames(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	before := b.Values()
	cursor := b.Cursor()

	b.Submit("add Photography Liability Waiver")

	msg := lastMessage(b)
	if !strings.Contains(msg.Text, "Photography Liability Waiver") ||
		!strings.Contains(msg.Text, "Second Shooter, Rush Delivery") {
		t.Fatalf("message = %q", msg.Text)
	}
	if b.Cursor() != cursor {
		t.Errorf("cursor moved from %d to %d", cursor, b.Cursor())
	}
	after := b.Values()
	if len(after) != len(before) || after["client_name"] != before["client_name"] {
		t.Errorf("values changed: %v -> %v", before, after)
	}
}

func TestBuilderAddonAppliesWithoutAdvancing(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")

	b.Submit("ADD second shooter")
	values := b.Values()
	if values["second_shooter"] != true {
		t.Fatalf("second_shooter = %#v", values["second_shooter"])
	}
	if b.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", b.Cursor())
	}
	if lastMessage(b).Text != "Added Second Shooter." {
		t.Errorf("message = %q", lastMessage(b).Text)
	}

	b.Submit("add Second Shooter")
	if !strings.Contains(lastMessage(b).Text, "already included") {
		t.Errorf("repeat message = %q", lastMessage(b).Text)
	}

	if !b.Undo() || b.Values()["second_shooter"] != nil {
		t.Error("undo should remove the addon")
	}
}

func TestBuilderUndoThenAnswerTruncatesRedo(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("wedding")
	b.Submit("10")
	if b.Cursor() != 3 {
		t.Fatalf("cursor = %d, want 3", b.Cursor())
	}

	b.Undo()
	b.Undo()
	if b.Cursor() != 1 {
		t.Fatalf("after two undos cursor = %d, want 1", b.Cursor())
	}
	if q := b.Current(); q == nil || q.Field != "event_type" || lastMessage(b).Text != "Event type?" {
		t.Fatal("undo should re-ask the restored question")
	}
	if _, ok := b.Values()["event_type"]; ok {
		t.Fatal("undone answer still present")
	}

	b.Submit("portrait")
	if b.View("").CanRedo || b.Redo() {
		t.Fatal("answering after undo must drop the redo states")
	}
	if b.Cursor() != 3 || b.Values()["coverage_hours"] != nil {
		t.Errorf("cursor = %d values = %v", b.Cursor(), b.Values())
	}
}

func TestBuilderRedo(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("portrait")
	b.Undo()

	if !b.Redo() {
		t.Fatal("redo failed")
	}
	if b.Values()["event_type"] != "portrait" || b.Cursor() != 3 {
		t.Errorf("redo restored cursor %d values %v", b.Cursor(), b.Values())
	}
}

func TestBuilderReviewSummary(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	for _, answer := range []string{"Ana", "portrait", "20", "no"} {
		b.Submit(answer)
	}

	if b.Phase() != guidedSvc.PhaseReview || b.Current() != nil {
		t.Fatalf("phase = %s", b.Phase())
	}
	want := "Here's your risk check:\n⚠️ Deposit of at least 25%\n⚠️ Second shooter booked"
	if got := lastMessage(b).Text; got != want {
		t.Fatalf("summary =\n%s\nwant\n%s", got, want)
	}

	b.Submit("hello")
	if b.Phase() != guidedSvc.PhaseReview {
		t.Error("free text in review must not change phase")
	}

	b.Undo()
	if b.Phase() != guidedSvc.PhaseAsking || b.Current().Field != "second_shooter" {
		t.Error("undo from review should return to the last question")
	}
}

func TestBuilderDraft(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	b.Submit("Ana")
	b.Submit("add Second Shooter")
	for _, answer := range []string{"wedding", "", "30", "yes"} {
		b.Submit(answer)
	}

	d := b.Draft("Sam Studio")
	if d.Title != "Ana wedding" {
		t.Errorf("title = %q", d.Title)
	}
	if d.ClientName != "Ana" || d.ClientEmail != "" {
		t.Errorf("client = %q %q", d.ClientName, d.ClientEmail)
	}
	if d.Variables["provider_name"] != "Sam Studio" {
		t.Errorf("provider_name = %v", d.Variables["provider_name"])
	}
	if d.Variables["additional_terms"] != "A second shooter attends." {
		t.Errorf("additional_terms = %q", d.Variables["additional_terms"])
	}
	if d.Body != "Terms. {{additional_terms}} [[signature:client]]" {
		t.Errorf("body should stay a template: %q", d.Body)
	}
}

func TestDefaultCatalogLoads(t *testing.T) {
	cat, err := LoadCatalog(DefaultCatalog)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if names := cat.AddonNames(); len(names) == 0 || names[0] != "Second Shooter" {
		t.Errorf("addon order = %v", names)
	}

	b := NewBuilder(cat)
	for _, answer := range []string{"Ana Lima", "ana@example.com", "wedding", "2025-06-14", "Rosewood Hall", "", "", "3500", "", "", "", "add Liability Waiver"} {
		b.Submit(answer)
	}
	if b.Phase() != guidedSvc.PhaseReview {
		t.Fatalf("phase = %s at cursor %d (%s)", b.Phase(), b.Cursor(), lastMessage(b).Text)
	}
	for _, line := range cat.RiskSummary(b.Values()) {
		if !strings.HasPrefix(line, "✅") {
			t.Errorf("risk line %q should pass", line)
		}
	}
}

func TestBuilderKnownListsAnswersSorted(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	if got := b.Known(); got != "" {
		t.Fatalf("known before any answer = %q", got)
	}

	b.Submit("Ana")
	b.Submit("wedding")
	b.Submit("")
	b.Submit("add Second Shooter")

	got := b.Known()
	want := "addons: Second Shooter\nclient_name: Ana\ncoverage_hours: 8\nevent_type: wedding\nsecond_shooter: true\n"
	if got != want {
		t.Errorf("known = %q, want %q", got, want)
	}
	if strings.Contains(got, addonClausesField) {
		t.Error("addon clauses must not be listed")
	}
}
