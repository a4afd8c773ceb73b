package uilayer_test

import (
	"testing"
	"time"

	"github.com/joeycumines/go-uilayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T, h *harness, player uilayer.Player, opts ...uilayer.Option) (*uilayer.Layout, *fakeRoot) {
	t.Helper()
	root := new(fakeRoot)
	layout, err := uilayer.NewLayout(root, player, h.options(opts...)...)
	require.NoError(t, err)
	return layout, root
}

func TestNewLayout_Validation(t *testing.T) {
	h := newHarness(t)
	player := newFakePlayer(`p1`)

	_, err := uilayer.NewLayout(new(fakeRoot), player, uilayer.WithToolkit(h.toolkit), uilayer.WithStreamer(h.streamer))
	assert.ErrorContains(t, err, `loop must be provided`)

	_, err = uilayer.NewLayout(new(fakeRoot), player, uilayer.WithLoop(h.loop), uilayer.WithStreamer(h.streamer))
	assert.ErrorContains(t, err, `toolkit must be provided`)

	_, err = uilayer.NewLayout(new(fakeRoot), player, uilayer.WithLoop(h.loop), uilayer.WithToolkit(h.toolkit))
	assert.ErrorContains(t, err, `streamer must be provided`)

	_, err = uilayer.NewLayout(new(fakeRoot), player, uilayer.WithLoop(nil))
	assert.ErrorContains(t, err, `loop must not be nil`)

	_, err = uilayer.NewLayout(nil, player, h.options()...)
	assert.ErrorIs(t, err, uilayer.ErrInvalidArgument)

	_, err = uilayer.NewLayout(new(fakeRoot), player, append(h.options(), nil, uilayer.WithPriority(7))...)
	assert.ErrorContains(t, err, `unknown priority`)
}

func TestLayout_RegisterLayer(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))

	modal := newFakeContainer()
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, modal))
	assert.Zero(t, modal.transition)
	assert.Same(t, modal, layout.Layer(uilayer.LayerModal))

	menu := newFakeContainer()
	require.NoError(t, layout.RegisterLayer(`Menu`, menu))
	assert.Equal(t, []uilayer.LayerID{uilayer.LayerModal, `Menu`}, layout.Layers())

	assert.Nil(t, layout.Layer(uilayer.LayerGame))
}

func TestLayout_RegisterLayerDuplicate(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))

	first, second := newFakeContainer(), newFakeContainer()
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, first))

	err := layout.RegisterLayer(uilayer.LayerModal, second)
	assert.ErrorIs(t, err, uilayer.ErrDuplicateLayer)
	assert.Same(t, first, layout.Layer(uilayer.LayerModal))
	assert.Equal(t, time.Duration(-1), second.transition)
	assert.Len(t, layout.Layers(), 1)
	assert.True(t, h.logged(`register layer failed`))
}

func TestLayout_RegisterLayerInvalid(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))

	for _, id := range []uilayer.LayerID{``, `.`, `UI..Modal`, `UI.Layer.`, `UI Layer`, `UI/Layer`} {
		assert.ErrorIs(t, layout.RegisterLayer(id, newFakeContainer()), uilayer.ErrInvalidArgument, id)
	}
	assert.ErrorIs(t, layout.RegisterLayer(uilayer.LayerModal, nil), uilayer.ErrInvalidArgument)
	assert.Empty(t, layout.Layers())
}

func TestLayout_RegisterLayerDesignTime(t *testing.T) {
	h := newHarness(t)
	designTime := true
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`), uilayer.WithDesignTime(func() bool { return designTime }))

	container := newFakeContainer()
	assert.NoError(t, layout.RegisterLayer(uilayer.LayerModal, container))
	assert.Nil(t, layout.Layer(uilayer.LayerModal))
	assert.Equal(t, time.Duration(-1), container.transition)

	designTime = false
	assert.NoError(t, layout.RegisterLayer(uilayer.LayerModal, container))
	assert.Same(t, container, layout.Layer(uilayer.LayerModal))
}

func TestLayout_LayerInvalidIDPanics(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))
	assert.Panics(t, func() { layout.Layer(``) })
}

func TestLayout_PushWidget(t *testing.T) {
	h := newHarness(t)
	player := newFakePlayer(`p1`)
	layout, _ := newTestLayout(t, h, player)
	modal := newFakeContainer()
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, modal))

	var initialized uilayer.Widget
	widget := layout.PushWidget(uilayer.LayerModal, fakeClass(`Confirm`), func(w uilayer.Widget) {
		initialized = w
		assert.Empty(t, modal.widgets, `init must run before insertion`)
		w.(*fakeWidget).title = `Are you sure?`
	})
	require.NotNil(t, widget)
	assert.Same(t, widget, initialized)
	assert.Equal(t, []uilayer.Widget{widget}, modal.widgets)
	assert.Same(t, player, widget.OwningPlayer())
	assert.Equal(t, `Are you sure?`, widget.(*fakeWidget).title)

	id, ok := layout.LayerOf(widget)
	assert.True(t, ok)
	assert.Equal(t, uilayer.LayerModal, id)
}

func TestLayout_PushWidgetFailures(t *testing.T) {
	h := newHarness(t)
	player := newFakePlayer(`p1`)
	layout, _ := newTestLayout(t, h, player)
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, newFakeContainer()))

	assert.Nil(t, layout.PushWidget(``, fakeClass(`A`), nil))
	assert.Nil(t, layout.PushWidget(uilayer.LayerModal, nil, nil))
	assert.Nil(t, layout.PushWidget(uilayer.LayerMenu, fakeClass(`A`), nil))
	assert.True(t, h.logged(`no such layer`))

	h.toolkit.fail = true
	assert.Nil(t, layout.PushWidget(uilayer.LayerModal, fakeClass(`A`), nil))
	assert.True(t, h.logged(`instantiation failed`))
}

func TestLayout_PushWidgetInvalidPlayer(t *testing.T) {
	h := newHarness(t)
	player := newFakePlayer(`p1`)
	layout, _ := newTestLayout(t, h, player)
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, newFakeContainer()))

	player.gone = true
	widget := layout.PushWidget(uilayer.LayerModal, fakeClass(`A`), nil)
	require.NotNil(t, widget)
	assert.Nil(t, widget.OwningPlayer())
}

func TestLayout_RemoveWidget(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))
	modal := newFakeContainer()
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, modal))

	widget := layout.PushWidget(uilayer.LayerModal, fakeClass(`A`), nil)
	require.NotNil(t, widget)

	layout.RemoveWidget(uilayer.LayerMenu, widget)
	assert.Len(t, modal.widgets, 1)
	assert.True(t, h.logged(`no such layer`))

	layout.RemoveWidget(uilayer.LayerModal, nil)
	layout.RemoveWidget(``, widget)
	assert.Len(t, modal.widgets, 1)

	layout.RemoveWidget(uilayer.LayerModal, widget)
	assert.Empty(t, modal.widgets)
	_, ok := layout.LayerOf(widget)
	assert.False(t, ok)
}

func TestLayout_FindAndRemoveWidget(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))
	modal, menu := newFakeContainer(), newFakeContainer()
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, modal))
	require.NoError(t, layout.RegisterLayer(uilayer.LayerMenu, menu))

	a := layout.PushWidget(uilayer.LayerModal, fakeClass(`A`), nil)
	b := layout.PushWidget(uilayer.LayerMenu, fakeClass(`B`), nil)

	assert.True(t, layout.FindAndRemoveWidget(b))
	assert.Empty(t, menu.widgets)
	assert.Len(t, modal.widgets, 1)

	assert.False(t, layout.FindAndRemoveWidget(b))
	assert.False(t, layout.FindAndRemoveWidget(nil))
	assert.False(t, layout.FindAndRemoveWidget(&fakeWidget{}))

	assert.True(t, layout.FindAndRemoveWidget(a))
	assert.Empty(t, modal.widgets)
}

func TestLayout_Close(t *testing.T) {
	h := newHarness(t)
	layout, _ := newTestLayout(t, h, newFakePlayer(`p1`))
	require.NoError(t, layout.RegisterLayer(uilayer.LayerModal, newFakeContainer()))

	layout.Close()
	layout.Close()
	assert.True(t, layout.Closed())

	assert.ErrorIs(t, layout.RegisterLayer(uilayer.LayerMenu, newFakeContainer()), uilayer.ErrClosed)
	assert.Nil(t, layout.PushWidget(uilayer.LayerModal, fakeClass(`A`), nil))
	assert.Len(t, layout.Layers(), 1)
}
