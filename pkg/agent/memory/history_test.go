package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/vaultchat/pkg/types"
)

func TestConversationHistory_Recent(t *testing.T) {
	h := NewConversationHistory()
	for i := 0; i < 15; i++ {
		h.Add(types.NewUserMessage(fmt.Sprintf("m%d", i)))
	}

	recent := h.Recent(DefaultWindow)
	require.Len(t, recent, 10)
	assert.Equal(t, "m5", recent[0].Content)
	assert.Equal(t, "m14", recent[9].Content)

	assert.Len(t, h.All(), 15, "full log is kept for display")
	assert.Len(t, h.Recent(100), 15)
	assert.Empty(t, h.Recent(0))
}

func TestConversationHistory_AddUnlessDuplicate(t *testing.T) {
	h := NewConversationHistory()

	assert.True(t, h.AddUnlessDuplicate(types.NewUserMessage("hi")))
	assert.False(t, h.AddUnlessDuplicate(types.NewUserMessage("hi")))
	assert.True(t, h.AddUnlessDuplicate(types.NewAssistantMessage("hi")), "different role is not a duplicate")
	assert.True(t, h.AddUnlessDuplicate(types.NewUserMessage("hi")), "only the last entry is compared")
	assert.Equal(t, 3, h.Len())
}

func TestConversationHistory_LastAndClear(t *testing.T) {
	h := NewConversationHistory()
	assert.Nil(t, h.Last())

	h.Add(types.NewUserMessage("q"))
	h.Add(types.NewAssistantMessage("a"))
	assert.Equal(t, "a", h.Last().Content)

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.Last())
}

func TestConversationHistory_CopiesAreIndependent(t *testing.T) {
	h := NewConversationHistory()
	h.Add(types.NewUserMessage("one"))

	all := h.All()
	all[0] = types.NewUserMessage("changed")
	assert.Equal(t, "one", h.Last().Content)
}

func TestConversationHistory_ConcurrentAdd(t *testing.T) {
	h := NewConversationHistory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Add(types.NewUserMessage(fmt.Sprintf("m%d", i)))
			_ = h.Recent(DefaultWindow)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
