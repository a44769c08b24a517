package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := RootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "reindex", "search"}, names)
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"magazines", "subscription-plan"})
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindMagazine, model.KindSubscriptionPlan}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = parseKinds([]string{"newspapers"})
	assert.ErrorContains(t, err, "newspapers")
}

func TestPrintReindexResults(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printReindexResults(&buf, []service.ReindexResult{
		{Kind: model.KindMagazine, Indexed: 12, Removed: 1},
	})

	assert.Equal(t, "magazine               12 indexed       1 removed\n", buf.String())
}

func TestSearchCmd_RejectsBadArgs(t *testing.T) {
	cmd := SearchCmd()
	cmd.SetArgs([]string{"newspapers", "code:AAA"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "unknown kind")

	cmd = SearchCmd()
	cmd.SetArgs([]string{"magazines", "code:AAA", "--size", "0"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err = cmd.Execute()
	assert.ErrorContains(t, err, "size")
}

func TestSearchCmd_RejectsPageBeyondCap(t *testing.T) {
	cmd := SearchCmd()
	cmd.SetArgs([]string{"magazines", "code:AAA", "--page", "10001"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.ErrorContains(t, cmd.Execute(), "page must be")
}

type fakeSearcher struct {
	calls []string
	fail  error
}

func (f *fakeSearcher) Reindex(_ context.Context, kinds ...model.Kind) ([]service.ReindexResult, error) {
	f.calls = append(f.calls, "reindex:"+kinds[0].String())
	if f.fail != nil {
		return nil, f.fail
	}
	return []service.ReindexResult{{Kind: kinds[0], Indexed: 3}}, nil
}

func (f *fakeSearcher) Search(_ context.Context, kind model.Kind, text string, page search.Page) (any, error) {
	f.calls = append(f.calls, "search:"+kind.String()+":"+text)
	return []string{"hit"}, nil
}

func TestRunSearch_BuildsInMemoryIndexFirst(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	s := &fakeSearcher{}
	out, err := runSearch(ctx, s, true, model.KindMagazine, "code:AAA", search.PageAt(0, 20), &logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"hit"}, out)
	assert.Equal(t, []string{"reindex:magazine", "search:magazine:code:AAA"}, s.calls)

	s = &fakeSearcher{}
	_, err = runSearch(ctx, s, false, model.KindMagazine, "code:AAA", search.PageAt(0, 20), &logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"search:magazine:code:AAA"}, s.calls)

	s = &fakeSearcher{fail: errors.New("db down")}
	_, err = runSearch(ctx, s, true, model.KindMagazine, "code:AAA", search.PageAt(0, 20), &logger)
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, []string{"reindex:magazine"}, s.calls)
}
