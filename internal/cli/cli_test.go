package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/generationapi"
	"github.com/phrazzld/memoria/internal/store/memory"
	"github.com/phrazzld/memoria/internal/studysync"
)

type fakeClient struct {
	drafts []domain.CardDraft
	err    error

	calls int
	sess  domain.Session
	doc   generation.Document
	opts  generation.Options
}

func (f *fakeClient) Generate(
	_ context.Context,
	sess domain.Session,
	doc generation.Document,
	opts generation.Options,
) ([]domain.CardDraft, error) {
	f.calls++
	f.sess, f.doc, f.opts = sess, doc, opts
	return f.drafts, f.err
}

type fakeAccounts struct {
	creds generationapi.Credentials
	err   error

	call     string
	email    string
	password string
}

func (f *fakeAccounts) Register(_ context.Context, email, password string) (generationapi.Credentials, error) {
	f.call, f.email, f.password = "register", email, password
	return f.creds, f.err
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (generationapi.Credentials, error) {
	f.call, f.email, f.password = "login", email, password
	return f.creds, f.err
}

type harness struct {
	app    *App
	store  *memory.Store
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T, input string, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:  memory.New(),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	opts = append([]Option{WithIO(strings.NewReader(input), h.out, h.errOut)}, opts...)
	h.app = NewApp(h.store, opts...)
	return h
}

func newLocalHarness(t *testing.T, input string, opts ...Option) *harness {
	t.Helper()
	return newHarness(t, input, append([]Option{WithLocalSession()}, opts...)...)
}

func (h *harness) run(args ...string) error {
	cmd := NewRootCmd(h.app)
	cmd.SetArgs(args)
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	return cmd.ExecuteContext(context.Background())
}

func (h *harness) snapshot(t *testing.T) studysync.Snapshot {
	t.Helper()
	require.NotNil(t, h.app.ctrl, "controller not created")
	return h.app.ctrl.Snapshot()
}

func TestSets_NewListShow(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.NoError(t, h.run("sets", "new", "--name", "Biology"))
	assert.Contains(t, h.out.String(), "Biology (")
	assert.Contains(t, h.out.String(), domain.ExampleCard().Question)

	snap := h.snapshot(t)
	require.NotNil(t, snap.ActiveSet)
	biologyID := snap.ActiveSet.ID

	require.NoError(t, h.run("sets", "new"))
	assert.Equal(t, "Untitled Set 2", h.snapshot(t).ActiveSet.Name)

	h.out.Reset()
	require.NoError(t, h.run("sets", "list"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Biology")
	assert.NotContains(t, lines[1], "*")
	assert.Contains(t, lines[2], "Untitled Set 2")
	assert.Contains(t, lines[2], "*")

	h.out.Reset()
	require.NoError(t, h.run("sets", "show", biologyID))
	assert.Contains(t, h.out.String(), "Biology ("+biologyID+"), 1 cards")
	assert.Equal(t, biologyID, h.snapshot(t).ActiveSet.ID)
}

func TestSets_ListEmpty(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.NoError(t, h.run("sets", "list"))
	assert.Contains(t, h.out.String(), "No study sets yet")
}

func TestSets_DeleteAsksForConfirmation(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "n\ny\n")
	sess := domain.Session{UserID: LocalUserID}

	require.NoError(t, h.run("sets", "new", "--name", "Keep"))
	require.NoError(t, h.run("sets", "new", "--name", "Doomed"))

	require.NoError(t, h.run("sets", "delete"))
	assert.Contains(t, h.errOut.String(), `Delete "Doomed" and its 1 cards? [y/N]`)
	assert.Contains(t, h.out.String(), "Cancelled")
	sets, err := h.store.ListStudySets(context.Background(), sess)
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	h.out.Reset()
	require.NoError(t, h.run("sets", "delete"))
	assert.Contains(t, h.out.String(), `Deleted "Doomed"`)
	assert.Contains(t, h.out.String(), `Active set is now "Keep"`)

	sets, err = h.store.ListStudySets(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Keep", sets[0].Name)
}

func TestSets_DeleteWithYes(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.NoError(t, h.run("sets", "new", "--name", "Only"))
	id := h.snapshot(t).ActiveSet.ID

	require.NoError(t, h.run("sets", "delete", id, "--yes"))
	assert.Nil(t, h.snapshot(t).ActiveSet)

	sets, err := h.store.ListStudySets(context.Background(), domain.Session{UserID: LocalUserID})
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestCards_AddEditDelete(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.NoError(t, h.run("sets", "new", "--name", "Chemistry"))
	setID := h.snapshot(t).ActiveSet.ID

	require.NoError(t, h.run("cards", "add", "-q", "  What is H2O?  ", "-a", "Water"))
	cards := h.snapshot(t).Cards
	require.Len(t, cards, 2)
	added := cards[1]
	assert.Equal(t, "What is H2O?", added.Question)
	assert.Contains(t, h.out.String(), "Added card "+added.ID)

	require.NoError(t, h.run("cards", "edit", added.ID, "-a", "Dihydrogen monoxide"))
	edited := h.snapshot(t).Cards[1]
	assert.Equal(t, "What is H2O?", edited.Question)
	assert.Equal(t, "Dihydrogen monoxide", edited.Answer)

	require.NoError(t, h.run("cards", "delete", added.ID, "--set", setID))
	stored, err := h.store.ListCards(context.Background(), domain.Session{UserID: LocalUserID}, setID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.ExampleCard().Question, stored[0].Question)
}

func TestCards_Failures(t *testing.T) {
	t.Parallel()

	t.Run("no active set", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")

		err := h.run("cards", "add", "-q", "Q", "-a", "A")
		require.Error(t, err)
		assert.ErrorIs(t, err, studysync.ErrNoActiveSet)
		assert.True(t, IsReported(err))
		assert.Contains(t, h.errOut.String(), "error (validation): ")
	})

	t.Run("empty answer is published once", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")
		require.NoError(t, h.run("sets", "new"))

		err := h.run("cards", "add", "-q", "Q", "-a", "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyField)
		assert.True(t, IsReported(err))
		assert.Len(t, h.app.Notifications().Active(), 1)
		assert.Equal(t, 1, strings.Count(h.errOut.String(), "error (validation)"))
	})

	t.Run("card from another set", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")
		require.NoError(t, h.run("sets", "new", "--name", "One"))
		foreign := h.snapshot(t).Cards[0].ID
		require.NoError(t, h.run("sets", "new", "--name", "Two"))

		err := h.run("cards", "delete", foreign)
		assert.ErrorIs(t, err, studysync.ErrCardNotInSet)
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Mitochondria make ATP."), 0o600))

	gen := &fakeClient{drafts: []domain.CardDraft{
		{Question: "What makes ATP?", Answer: "Mitochondria"},
		{Question: "What is ATP?", Answer: "Energy currency"},
	}}
	h := newLocalHarness(t, "", WithGenerator(gen))

	require.NoError(t, h.run("generate", path, "--name", "Cells", "-d", "4", "-k", "atp, energy", "-l", "German"))
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, LocalUserID, gen.sess.UserID)
	assert.Equal(t, "notes.txt", gen.doc.Filename)
	assert.Equal(t, 4, gen.opts.DetailLevel)
	assert.Equal(t, "German", gen.opts.Language)
	assert.Equal(t, "atp, energy", gen.opts.Keywords)

	snap := h.snapshot(t)
	require.NotNil(t, snap.ActiveSet)
	assert.Equal(t, "Cells", snap.ActiveSet.Name)
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, "What makes ATP?", snap.Cards[0].Question)
	assert.Contains(t, h.out.String(), "Cells (")
}

func TestGenerate_Failures(t *testing.T) {
	t.Parallel()

	t.Run("unsupported file is never read or sent", func(t *testing.T) {
		t.Parallel()
		gen := &fakeClient{}
		h := newLocalHarness(t, "", WithGenerator(gen))

		err := h.run("generate", filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		assert.Zero(t, gen.calls)
	})

	t.Run("service failure is reported", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("text"), 0o600))

		gen := &fakeClient{err: &generation.FailedError{StatusCode: 422, Message: "nothing to learn"}}
		h := newLocalHarness(t, "", WithGenerator(gen))

		err := h.run("generate", path)
		require.Error(t, err)
		assert.True(t, IsReported(err))
		assert.Contains(t, h.errOut.String(), "error (remote): ")
		assert.Contains(t, h.errOut.String(), "nothing to learn")
		assert.Nil(t, h.snapshot(t).ActiveSet)
	})

	t.Run("no generator configured", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("text"), 0o600))
		h := newLocalHarness(t, "")

		err := h.run("generate", path)
		assert.ErrorIs(t, err, studysync.ErrNoGenerator)
	})
}

func TestImportExport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	h := newLocalHarness(t, "")

	in := filepath.Join(dir, "deck.json")
	require.NoError(t, os.WriteFile(in, []byte(`[
		{"question": "Q1", "answer": "A1"},
		{"question": "", "answer": "skipped"},
		{"question": "Q2", "answer": "A2"}
	]`), 0o600))

	require.NoError(t, h.run("import", in, "--name", "Imported"))
	snap := h.snapshot(t)
	require.NotNil(t, snap.ActiveSet)
	assert.Equal(t, "Imported", snap.ActiveSet.Name)
	require.Len(t, snap.Cards, 2)

	h.out.Reset()
	require.NoError(t, h.run("export", "--format", "json", "--output", "-"))
	assert.Contains(t, h.out.String(), `"question": "Q1"`)
	assert.Contains(t, h.out.String(), `"answer": "A2"`)

	out := filepath.Join(dir, "deck.csv")
	h.out.Reset()
	require.NoError(t, h.run("export", "-o", out, "--field-sep", ";", "--custom-record-sep", `\n---\n`))
	assert.Contains(t, h.out.String(), "Exported to "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\"Q1\";\"A1\"\n---\n\"Q2\";\"A2\"", string(data))

	require.NoError(t, h.run("import", out, "--field-sep", ";", "--custom-record-sep", `\n---\n`))
	assert.Equal(t, "Untitled Set 2", h.snapshot(t).ActiveSet.Name)
	assert.Len(t, h.snapshot(t).Cards, 2)
}

func TestImportExport_Failures(t *testing.T) {
	t.Parallel()

	t.Run("bad separator preset", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")
		require.NoError(t, h.run("sets", "new"))

		err := h.run("export", "--field-sep", "#", "-o", "-")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unsupported import file", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")

		err := h.run("import", "deck.txt")
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "deck.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"question": `), 0o600))
		h := newLocalHarness(t, "")

		err := h.run("import", path)
		require.Error(t, err)
		assert.Contains(t, h.errOut.String(), "error (parse): ")
	})

	t.Run("export without active set", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")

		err := h.run("export", "-o", "-")
		assert.ErrorIs(t, err, studysync.ErrNoActiveSet)
	})
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	t.Parallel()

	sessions, err := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	accounts := &fakeAccounts{creds: generationapi.Credentials{
		UserID:    "user-42",
		Token:     "token-42",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	h := newHarness(t, "correct-horse-battery\n", WithAccounts(accounts), WithSessionFile(sessions))

	err = h.run("sets", "list")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Contains(t, h.errOut.String(), "error (auth): ")

	require.NoError(t, h.run("auth", "login", "--email", "ada@example.com"))
	assert.Equal(t, "login", accounts.call)
	assert.Equal(t, "ada@example.com", accounts.email)
	assert.Equal(t, "correct-horse-battery", accounts.password)
	assert.Contains(t, h.errOut.String(), "Password: ")
	assert.Contains(t, h.out.String(), "Logged in as user-42")

	creds, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-42", creds.Token)

	require.NoError(t, h.run("sets", "new", "--name", "Mine"))
	sets, err := h.store.ListStudySets(context.Background(), domain.Session{UserID: "user-42"})
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	h.out.Reset()
	require.NoError(t, h.run("auth", "status"))
	assert.Contains(t, h.out.String(), "Logged in as user-42")

	require.NoError(t, h.run("auth", "logout"))
	h.out.Reset()
	require.NoError(t, h.run("auth", "status"))
	assert.Equal(t, "Not logged in\n", h.out.String())
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	sessions, err := NewSessionFile(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)
	accounts := &fakeAccounts{creds: generationapi.Credentials{UserID: "new-user", Token: "t"}}
	h := newHarness(t, "", WithAccounts(accounts), WithSessionFile(sessions))

	require.NoError(t, h.run("auth", "register", "-e", "new@example.com", "-p", "long-enough-password"))
	assert.Equal(t, "register", accounts.call)
	assert.Equal(t, "long-enough-password", accounts.password)

	creds, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-user", creds.UserID)
}

func TestAuth_Failures(t *testing.T) {
	t.Parallel()

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()
		sessions, err := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		accounts := &fakeAccounts{err: &generation.FailedError{StatusCode: 401, Message: "Invalid email or password"}}
		h := newHarness(t, "", WithAccounts(accounts), WithSessionFile(sessions))

		err = h.run("auth", "login", "-e", "ada@example.com", "-p", "wrong")
		require.Error(t, err)
		assert.Contains(t, h.errOut.String(), "error (auth): ")

		_, err = sessions.Load()
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		sessions, err := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		accounts := &fakeAccounts{}
		h := newHarness(t, "", WithAccounts(accounts), WithSessionFile(sessions))

		err = h.run("auth", "login", "-p", "pw")
		assert.ErrorIs(t, err, domain.ErrEmptyField)
		assert.Empty(t, accounts.call)
	})

	t.Run("no backend", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")

		err := h.run("auth", "login", "-e", "ada@example.com", "-p", "pw")
		assert.ErrorIs(t, err, errNoAccounts)
	})

	t.Run("local session reported by status", func(t *testing.T) {
		t.Parallel()
		h := newLocalHarness(t, "")

		require.NoError(t, h.run("auth", "status"))
		assert.Contains(t, h.out.String(), `using local user "local"`)
	})
}

func TestNotices(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.NoError(t, h.run("notices"))
	assert.Contains(t, h.out.String(), "No notices")

	require.Error(t, h.run("cards", "add", "-q", "Q", "-a", "A"))

	h.out.Reset()
	require.NoError(t, h.run("notices"))
	assert.Contains(t, h.out.String(), "validation")
	assert.Contains(t, h.out.String(), "no active study set")

	require.NoError(t, h.run("notices", "--clear"))
	h.out.Reset()
	require.NoError(t, h.run("notices"))
	assert.Contains(t, h.out.String(), "No notices")
}

func TestNotices_Dismiss(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	require.Error(t, h.run("cards", "add", "-q", "Q", "-a", "A"))
	require.Error(t, h.run("cards", "delete", "missing"))
	active := h.app.Notifications().Active()
	require.Len(t, active, 2)
	first := active[0].ID

	h.out.Reset()
	require.NoError(t, h.run("notices"))
	assert.Contains(t, h.out.String(), first)

	h.out.Reset()
	require.NoError(t, h.run("notices", "dismiss", first))
	assert.Contains(t, h.out.String(), "Dismissed notice "+first)
	remaining := h.app.Notifications().Active()
	require.Len(t, remaining, 1)
	assert.Equal(t, active[1].ID, remaining[0].ID)

	err := h.run("notices", "dismiss", first)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoticeNotFound)

	err = h.run("notices", "dismiss")
	require.Error(t, err)
	assert.False(t, IsReported(err))
}

func TestUsageErrorsAreNotReported(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "")

	err := h.run("cards", "edit")
	require.Error(t, err)
	assert.False(t, IsReported(err))
	assert.Empty(t, h.app.Notifications().Active())
}

func TestShell(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`sets new --name "Shell Set"`,
		``,
		`cards add -q 'What is 2+2?' -a "Four"`,
		`cards add -q "unterminated`,
		`sets show`,
		`bogus`,
		`exit`,
		`sets list`,
	}, "\n") + "\n"
	h := newLocalHarness(t, input)

	require.NoError(t, h.run("shell"))

	out := h.out.String()
	assert.Contains(t, out, "Shell Set (")
	assert.Contains(t, out, "Added card ")
	assert.Contains(t, out, "2 cards")
	assert.Contains(t, out, "Q: What is 2+2?")
	assert.NotContains(t, out, "No study sets yet")

	errOut := h.errOut.String()
	assert.Contains(t, errOut, "memoria> ")
	assert.Contains(t, errOut, "error: unterminated quote")
	assert.Contains(t, errOut, `error: unknown command "bogus"`)
}

func TestShell_EndsAtEOF(t *testing.T) {
	t.Parallel()
	h := newLocalHarness(t, "sets new")

	require.NoError(t, h.run("shell"))
	assert.Contains(t, h.out.String(), "My First Flashcard Set (")
}

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr error
	}{
		{name: "blank", line: "   \t ", want: nil},
		{name: "words", line: "sets  list", want: []string{"sets", "list"}},
		{name: "double quotes", line: `cards add -q "What is it?"`, want: []string{"cards", "add", "-q", "What is it?"}},
		{name: "single quotes keep double", line: `-a 'say "hi"'`, want: []string{"-a", `say "hi"`}},
		{name: "empty quoted arg", line: `-n ""`, want: []string{"-n", ""}},
		{name: "quotes join words", line: `a"b c"d`, want: []string{"ab cd"}},
		{name: "backslashes kept", line: `--custom-record-sep \n\n`, want: []string{"--custom-record-sep", `\n\n`}},
		{name: "unterminated", line: `-q "open`, wantErr: errUnterminatedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := splitArgs(tt.line)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
