package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	alice = &sessions.User{ID: 1, Username: "alice"}
	bob   = &sessions.User{ID: 2, Username: "bob"}
)

func at(min int) time.Time {
	return time.Date(2024, 5, 1, 10, min, 0, 0, time.UTC)
}

func ownedBy(id int64) *int64 { return &id }

func titles(list []collection.Collection) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Title)
	}
	return out
}

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery("", "  ", "")
	require.Equal(t, Query{Tab: TabAll, Sort: SortRecent}, q)

	q = ParseQuery("MINE", " cam ", "az")
	require.Equal(t, Query{Tab: TabMine, Search: "cam", Sort: SortAZ}, q)

	q = ParseQuery("others", "", "random")
	require.Equal(t, TabAll, q.Tab)
	require.Equal(t, SortRecent, q.Sort)

	require.Empty(t, ParseQuery("all", "", "recent").Values().Encode())
	require.Equal(t, "q=x&sort=oldest&tab=mine", ParseQuery("mine", "x", "oldest").Values().Encode())
}

func TestApply_SearchAndSortAZ(t *testing.T) {
	list := []collection.Collection{
		{ID: 1, Title: "Zebra", Tag: "Animals", CreatedAt: at(1)},
		{ID: 2, Title: "apple", Tag: "Fruit", CreatedAt: at(2)},
		{ID: 3, Title: "Apple pie", Tag: "", CreatedAt: at(3)},
	}

	out := Apply(list, ParseQuery("all", "", "az"), nil)
	require.Equal(t, []string{"apple", "Apple pie", "Zebra"}, titles(out))

	out = Apply(list, ParseQuery("all", "ANIM", ""), nil)
	require.Equal(t, []string{"Zebra"}, titles(out))

	out = Apply(list, ParseQuery("all", "app", "oldest"), nil)
	require.Equal(t, []string{"apple", "Apple pie"}, titles(out))

	out = Apply(list, ParseQuery("all", "", "recent"), nil)
	require.Equal(t, []string{"Apple pie", "apple", "Zebra"}, titles(out))

	require.Equal(t, "Zebra", list[0].Title, "input is not reordered")
}

func TestApply_StableForEqualKeys(t *testing.T) {
	list := []collection.Collection{
		{ID: 1, Title: "same", CreatedAt: at(5)},
		{ID: 2, Title: "same", CreatedAt: at(5)},
		{ID: 3, Title: "same", CreatedAt: at(5)},
	}
	for _, s := range []string{"recent", "oldest", "az"} {
		out := Apply(list, ParseQuery("", "", s), nil)
		require.Equal(t, []int64{1, 2, 3}, []int64{out[0].ID, out[1].ID, out[2].ID}, s)
	}
}

func TestApply_MineTab(t *testing.T) {
	list := []collection.Collection{
		{ID: 1, Title: "a", UserID: ownedBy(1), CreatedAt: at(1)},
		{ID: 2, Title: "b", UserID: ownedBy(2), CreatedAt: at(2)},
		{ID: 3, Title: "legacy", CreatedAt: at(3)},
	}
	mine := ParseQuery("mine", "", "")

	require.Equal(t, []string{"a"}, titles(Apply(list, mine, ownedBy(1))))
	require.Empty(t, Apply(list, mine, nil), "guests own nothing")
	require.Len(t, Apply(list, ParseQuery("all", "", ""), nil), 3)
}

func TestRender_Cards(t *testing.T) {
	list := []collection.Collection{
		{ID: 7, Title: "Books", Tag: "", Description: "d", CreatedAt: at(4), ItemCount: 2},
	}
	p := Render(list, ParseQuery("all", "", ""))
	require.False(t, p.Empty)
	require.Len(t, p.Cards, 1)
	card := p.Cards[0]
	require.Equal(t, "No tag", card.Tag)
	require.Equal(t, "1 May, 10:04", card.CreatedLabel)
	require.Equal(t, "-", card.UpdatedLabel)
	require.False(t, card.Editable)
	require.Empty(t, card.EditURL)

	p = Render(list, ParseQuery("mine", "", ""))
	require.True(t, p.Cards[0].Editable)
	require.Equal(t, "/manage-collection?id=7", p.Cards[0].EditURL)
	require.Equal(t, "/collections/7/delete", p.Cards[0].DeleteURL)

	p = Render(nil, ParseQuery("", "", ""))
	require.True(t, p.Empty)
	require.NotNil(t, p.Cards)
}

func newService(t *testing.T) (Service, repository.Repository) {
	t.Helper()
	repo := repository.NewStoreRepo(storage.NewMemoryEngine())
	return New(repo), repo
}

func TestEditor_CreateThenEdit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	f, err := svc.OpenEditor(ctx, "", alice)
	require.NoError(t, err)
	require.Equal(t, "New Collection", f.Heading)
	require.False(t, f.Editing)

	before := testutil.ToFloat64(metrics.Upserts.WithLabelValues("create"))
	c, _, err := svc.SubmitEditor(ctx, "", EditorInput{Title: "  Films ", Tag: " Media ", Description: "x"}, alice)
	require.NoError(t, err)
	require.Equal(t, "Films", c.Title)
	require.Equal(t, "Media", c.Tag)
	require.Equal(t, int64(1), *c.UserID)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Upserts.WithLabelValues("create")))

	f, err = svc.OpenEditor(ctx, c.IDString(), alice)
	require.NoError(t, err)
	require.Equal(t, "Edit Collection", f.Heading)
	require.True(t, f.Editing)
	require.Equal(t, "Films", f.Title)
	require.Equal(t, c.Version, f.Version)

	upd, _, err := svc.SubmitEditor(ctx, c.IDString(), EditorInput{Title: "Movies", Tag: "Media", Version: f.Version}, alice)
	require.NoError(t, err)
	require.Equal(t, "Movies", upd.Title)
	require.Equal(t, c.CreatedAt, upd.CreatedAt)
}

func TestEditor_TitleRequired(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	before := testutil.ToFloat64(metrics.ValidationFailures)
	_, f, err := svc.SubmitEditor(ctx, "", EditorInput{Title: "   ", Tag: "t"}, alice)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "title", verr.Field)
	require.Equal(t, "Title is required.", f.Error)
	require.Equal(t, "t", f.Tag, "input is echoed back")
	require.Equal(t, before+1, testutil.ToFloat64(metrics.ValidationFailures))

	res, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, res.Collections)
}

func TestEditor_UnknownIDAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.OpenEditor(ctx, "999", alice)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.OpenEditor(ctx, "", nil)
	require.ErrorIs(t, err, ErrUnauthenticated)

	c, err := svc.Save(ctx, "", collection.FullDraft("a", "", ""), alice)
	require.NoError(t, err)

	_, err = svc.OpenEditor(ctx, c.IDString(), bob)
	require.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.SubmitEditor(ctx, c.IDString(), EditorInput{Title: "stolen"}, bob)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, c.IDString(), bob), ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, c.IDString(), nil), ErrUnauthenticated)
}

func TestSave_PartialUpdateAndConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	c, err := svc.Save(ctx, "", collection.FullDraft("A", "T", "D"), alice)
	require.NoError(t, err)

	title := "B"
	upd, err := svc.Save(ctx, c.IDString(), collection.Draft{Title: &title}, alice)
	require.NoError(t, err)
	require.Equal(t, "B", upd.Title)
	require.Equal(t, "T", upd.Tag)

	tag := "only tag"
	upd, err = svc.Save(ctx, c.IDString(), collection.Draft{Tag: &tag}, alice)
	require.NoError(t, err, "title may be omitted on update")
	require.Equal(t, "B", upd.Title)

	before := testutil.ToFloat64(metrics.VersionConflicts)
	stale := collection.Draft{Title: &title, ExpectedVersion: c.Version}
	_, err = svc.Save(ctx, c.IDString(), stale, alice)
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.VersionConflicts))

	_, err = svc.Save(ctx, "", collection.FullDraft("guest", "", ""), nil)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDashboard_AfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	_, err := repo.SeedDemo(ctx, ownedBy(alice.ID))
	require.NoError(t, err)

	page, err := svc.Dashboard(ctx, ParseQuery("mine", "", "az"), alice)
	require.NoError(t, err)
	require.Len(t, page.Cards, 2)
	require.Equal(t, "Favourite Books", page.Cards[0].Title)

	page, err = svc.Dashboard(ctx, ParseQuery("mine", "", ""), bob)
	require.NoError(t, err)
	require.True(t, page.Empty)

	before := testutil.ToFloat64(metrics.Deletes)
	first := mustFirstID(t, svc, alice)
	require.NoError(t, svc.Delete(ctx, first, alice))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Deletes))
	require.ErrorIs(t, svc.Delete(ctx, first, alice), ErrNotFound)

	list, err := svc.List(ctx, ParseQuery("all", "", ""), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func mustFirstID(t *testing.T, svc Service, u *sessions.User) string {
	t.Helper()
	list, err := svc.List(context.Background(), ParseQuery("mine", "", "az"), u)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].IDString()
}

func TestDashboard_DemoSeedComesBackWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStoreRepo(storage.NewMemoryEngine())
	svc := New(repo, WithDemoSeed(true))

	page, err := svc.Dashboard(ctx, ParseQuery("mine", "", "az"), alice)
	require.NoError(t, err)
	require.Len(t, page.Cards, 2, "first visit seeds records owned by the viewer")

	for _, card := range page.Cards {
		require.NoError(t, svc.Delete(ctx, strconv.FormatInt(card.ID, 10), alice))
	}
	page, err = svc.Dashboard(ctx, ParseQuery("all", "", ""), alice)
	require.NoError(t, err)
	require.Len(t, page.Cards, 2, "emptied list is seeded again")

	plain := New(repo)
	require.NoError(t, repo.Save(ctx, nil))
	page, err = plain.Dashboard(ctx, ParseQuery("all", "", ""), alice)
	require.NoError(t, err)
	require.True(t, page.Empty)
}
