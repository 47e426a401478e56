package pluginloader

import (
	"testing"

	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/descriptor"
	"github.com/smartcgms-go/core/event"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/resultcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFilter struct{ name string }

func (f *stubFilter) Execute(ev *event.Event) error { ev.Release(); return nil }

func TestRegisterDiscardsEmptyContribution(t *testing.T) {
	l := New(descriptor.New())
	ok := l.Register(Contribution{Path: "empty.so"})
	assert.False(t, ok)
	assert.Empty(t, l.DescribeLoaded())
}

func TestCreateFilterFirstOKWins(t *testing.T) {
	l := New(descriptor.New())
	kind := guid.New()

	l.Register(Contribution{
		Path: "a.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return nil, capability.Capabilities{}, resultcode.NotImpl
		},
	})
	l.Register(Contribution{
		Path: "b.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return &stubFilter{name: "b"}, capability.Capabilities{}, resultcode.OK
		},
	})
	l.Register(Contribution{
		Path: "c.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			t.Fatal("library c should not be consulted once b succeeds")
			return nil, capability.Capabilities{}, resultcode.OK
		},
	})

	f, _, err := l.CreateFilter(kind, nil)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "b", f.(*stubFilter).name)
}

func TestCreateFilterRememberedFailureDiscardedBySuccess(t *testing.T) {
	l := New(descriptor.New())
	kind := guid.New()

	l.Register(Contribution{
		Path: "a.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return nil, capability.Capabilities{}, resultcode.Fail
		},
	})
	l.Register(Contribution{
		Path: "b.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return &stubFilter{name: "b"}, capability.Capabilities{}, resultcode.OK
		},
	})

	f, _, err := l.CreateFilter(kind, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", f.(*stubFilter).name)
}

func TestCreateFilterReturnsRememberedFailureWhenNoneSucceed(t *testing.T) {
	l := New(descriptor.New())
	kind := guid.New()

	l.Register(Contribution{
		Path: "a.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return nil, capability.Capabilities{}, resultcode.NotImpl
		},
	})
	l.Register(Contribution{
		Path: "b.so",
		CreateFilter: func(k guid.GUID, next capability.Filter) (capability.Filter, capability.Capabilities, resultcode.Code) {
			return nil, capability.Capabilities{}, resultcode.Fail
		},
	})

	_, _, err := l.CreateFilter(kind, nil)
	require.Error(t, err)
	assert.Equal(t, resultcode.Fail, err.(*resultcode.Error).Code)
}

func TestCreateFilterNoLibrariesResolvedIsNotImpl(t *testing.T) {
	l := New(descriptor.New())
	_, _, err := l.CreateFilter(guid.New(), nil)
	require.Error(t, err)
	assert.Equal(t, resultcode.NotImpl, err.(*resultcode.Error).Code)
}

func TestRegisterPopulatesDescriptorRegistry(t *testing.T) {
	reg := descriptor.New()
	l := New(reg)
	kind := guid.New()

	l.Register(Contribution{
		Path: "a.so",
		FilterDescriptors: []descriptor.FilterDescriptor{
			{Kind: kind, DisplayName: "Demo Filter"},
		},
	})

	d, ok := reg.Filter(kind)
	require.True(t, ok)
	assert.Equal(t, "Demo Filter", d.DisplayName)
}

func TestRetainHandleCloseIsNoop(t *testing.T) {
	l := New(descriptor.New())
	h := l.Retain()
	assert.NoError(t, h.Close())
}

func TestLoadMissingSolversDirIsNotAnError(t *testing.T) {
	l := New(descriptor.New())
	err := l.Load(t.TempDir())
	assert.NoError(t, err)
	assert.Empty(t, l.DescribeLoaded())
}
