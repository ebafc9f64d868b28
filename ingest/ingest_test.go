package ingest

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scicatalog/catalog/model"
)

// recordedExec is one call fakeExecer observed, kept for assertions.
type recordedExec struct {
	query string
	args  []any
}

// fakeExecer records every statement handed to it instead of running
// anything against a live connection, the in-package substitute for a real
// *sql.Tx that the row-insert and parent-edge paths are narrow enough to
// accept (see ingest.go's execer interface).
type fakeExecer struct {
	execs []recordedExec
}

func (f *fakeExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, recordedExec{query: query, args: args})
	return nil, nil
}

func (f *fakeExecer) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errors.New("fakeExecer: bulk-copy path is not faked, only the row path")
}

func TestParseManifestDecodesFilesAndParents(t *testing.T) {
	doc := []byte(`
namespace: exp
creator: alice
files:
  - name: run1.dat
    size: 1024
    metadata:
      run: 42
    parents:
      - abc123
  - name: run2.dat
`)
	m, err := ParseManifest(doc)
	assert.NoError(t, err)
	assert.Equal(t, "exp", m.Namespace)
	assert.Len(t, m.Files, 2)
	assert.Equal(t, "run1.dat", m.Files[0].Name)
	assert.Equal(t, []string{"abc123"}, m.Files[0].Parents)
}

func TestManifestFilesCarriesCreatorAndNamespace(t *testing.T) {
	m := &Manifest{Namespace: "exp", Creator: "bob", Files: []ManifestFile{{Name: "a.dat"}}}
	files := m.ToFiles()
	assert.Len(t, files, 1)
	assert.Equal(t, "exp", files[0].Namespace)
	assert.Equal(t, "bob", files[0].Creator)
}

func TestNewFileLeavesFIDEmptyUntilAssigned(t *testing.T) {
	// CreateMany assigns FIDs to these against a live transaction; this only
	// checks the precondition it relies on.
	files := []*model.File{model.NewFile("", "exp", "a.dat"), model.NewFile("preset", "exp", "b.dat")}
	assert.Equal(t, "", files[0].FID)
	assert.Equal(t, "preset", files[1].FID)
}

func TestDefaultCopyThresholdMatchesSourceConstant(t *testing.T) {
	assert.Equal(t, 100, DefaultCopyThreshold)
}

// TestCreateManyWithParentsRecordsExactlyOneEdge is spec.md §8 scenario 6:
// create_many([f1, f2 with parents=[f1]]) in one call leaves parent_child
// containing exactly (f1, f2), and both files inserted.
func TestCreateManyWithParentsRecordsExactlyOneEdge(t *testing.T) {
	f1 := model.NewFile("fid-f1", "exp", "f1.dat")
	f2 := model.NewFile("", "exp", "f2.dat")
	f2.Parents = []string{"fid-f1"}

	fake := &fakeExecer{}
	got, err := CreateMany(context.Background(), fake, Request{
		Files:   []*model.File{f1, f2},
		Creator: "alice",
	})
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "fid-f1", got[0].FID)
	assert.NotEmpty(t, got[1].FID)
	assert.Equal(t, "alice", got[0].Creator)
	assert.Equal(t, "alice", got[1].Creator)

	var fileInserts, edgeInserts []recordedExec
	for _, e := range fake.execs {
		switch e.query {
		case insertFileSQL:
			fileInserts = append(fileInserts, e)
		case insertParentEdgeSQL:
			edgeInserts = append(edgeInserts, e)
		}
	}
	assert.Len(t, fileInserts, 2, "both f1 and f2 must be inserted")
	assert.Len(t, edgeInserts, 1, "parent_child must contain exactly one edge")
	assert.Equal(t, []any{"fid-f1", got[1].FID}, edgeInserts[0].args)
}

// TestCreateManyWithoutParentsRecordsNoEdges confirms the second buffer is
// left untouched when no file declares a parent.
func TestCreateManyWithoutParentsRecordsNoEdges(t *testing.T) {
	fake := &fakeExecer{}
	_, err := CreateMany(context.Background(), fake, Request{
		Files: []*model.File{model.NewFile("fid-f3", "exp", "f3.dat")},
	})
	assert.NoError(t, err)
	for _, e := range fake.execs {
		assert.NotEqual(t, insertParentEdgeSQL, e.query)
	}
}
