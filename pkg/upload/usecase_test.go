package upload

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/identity"
)

type memRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]Upload
}

func newMemRepo() *memRepo { return &memRepo{items: map[uuid.UUID]Upload{}} }

func (m *memRepo) Create(_ context.Context, u Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[u.ID] = u
	return nil
}

func (m *memRepo) ListByOwner(_ context.Context, owner uuid.UUID, _, _ int) ([]Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Upload
	for _, u := range m.items {
		if u.OwnerID == owner {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) GetForOwner(_ context.Context, owner, id uuid.UUID) (Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok || u.OwnerID != owner {
		return Upload{}, ErrNotFound
	}
	return u, nil
}

func (m *memRepo) LatestForOwner(ctx context.Context, owner uuid.UUID) (Upload, error) {
	list, _ := m.ListByOwner(ctx, owner, 1, 0)
	if len(list) == 0 {
		return Upload{}, ErrNotFound
	}
	return list[0], nil
}

func (m *memRepo) DeleteForOwner(ctx context.Context, owner, id uuid.UUID) (Upload, error) {
	u, err := m.GetForOwner(ctx, owner, id)
	if err != nil {
		return Upload{}, err
	}
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return u, nil
}

type parserFunc func(ctx context.Context, sess identity.Session, doc Document) (any, error)

func (f parserFunc) Parse(ctx context.Context, sess identity.Session, doc Document) (any, error) {
	return f(ctx, sess, doc)
}

func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestImport(t *testing.T) {
	repo := newMemRepo()
	var seen Document
	parser := parserFunc(func(_ context.Context, _ identity.Session, doc Document) (any, error) {
		seen = doc
		return []any{map[string]any{"data": map[string]any{"personne": map[string]any{"prenom": "Alex"}}}}, nil
	})
	svc := NewService(repo, parser, Options{Dir: t.TempDir()}, nil)
	owner := uuid.New()

	data := docx(t, `<w:p><w:r><w:t>Alex Martin</w:t></w:r></w:p><w:p><w:r><w:t>Go developer</w:t></w:r></w:p>`)
	res, err := svc.Import(context.Background(), identity.NewBearerSession("a@b.c", "t"), owner, File{Filename: "CV.DOCX", Data: data})
	require.NoError(t, err)

	assert.Equal(t, "Alex Martin\nGo developer", seen.Text)
	assert.Equal(t, "Alex", res.Record.Person.FirstName)
	assert.True(t, res.Record.IsMaster)
	assert.FileExists(t, res.Upload.StorageURI)
	assert.Equal(t, "Alex Martin\nGo developer", svc.LatestExcerpt(context.Background(), owner))

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), owner, res.Upload.ID))
	_, err = os.Stat(res.Upload.StorageURI)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.ErrorIs(t, svc.Delete(context.Background(), owner, res.Upload.ID), ErrNotFound)
	assert.Empty(t, svc.LatestExcerpt(context.Background(), owner))
}

func TestImportRejects(t *testing.T) {
	never := parserFunc(func(context.Context, identity.Session, Document) (any, error) {
		t.Fatal("parser must not be called")
		return nil, nil
	})
	svc := NewService(newMemRepo(), never, Options{Dir: t.TempDir(), MaxBytes: 4}, nil)
	ctx := context.Background()
	sess := identity.Anonymous()

	_, err := svc.Import(ctx, sess, uuid.New(), File{Filename: "cv.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.Import(ctx, sess, uuid.New(), File{Filename: "cv.pdf"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Import(ctx, sess, uuid.New(), File{Filename: "cv.pdf", Data: []byte("12345")})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestImportParserFailure(t *testing.T) {
	failing := parserFunc(func(context.Context, identity.Session, Document) (any, error) {
		return nil, errors.New("backend down")
	})
	svc := NewService(newMemRepo(), failing, Options{Dir: t.TempDir()}, nil)
	_, err := svc.Import(context.Background(), identity.Anonymous(), uuid.New(), File{Filename: "cv.docx", Data: docx(t, "")})
	assert.ErrorContains(t, err, "backend down")
}

type fakeModel struct{ reply string }

func (f fakeModel) Ask(context.Context, string, string) (string, error) { return f.reply, nil }

func TestLLMParser(t *testing.T) {
	p := NewLLMParser(fakeModel{reply: "Voici le JSON:\n{\"personne\": {\"nom\": \"Martin\"}}\nBonne journée"})
	out, err := p.Parse(context.Background(), nil, Document{Text: "Martin"})
	require.NoError(t, err)
	assert.Equal(t, `{"personne": {"nom": "Martin"}}`, out)

	_, err = p.Parse(context.Background(), nil, Document{Text: "  "})
	assert.Error(t, err)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "héll", Excerpt("héllo", 4))
	assert.Equal(t, "héllo", Excerpt("héllo", 0))
	assert.Equal(t, "ok", Excerpt("ok", 10))
}
