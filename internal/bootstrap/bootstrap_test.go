package bootstrap

import (
	"context"
	"testing"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/imagegen"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild_WithoutImages(t *testing.T) {
	svc := Build(Deps{Models: llm.NewMockClient(), Store: store.NewMemoryStore()})
	require.NotNil(t, svc.Navigator)
	require.NotNil(t, svc.History)
	assert.Nil(t, svc.Avatars)

	node, err := svc.Navigator.Submit(context.Background(), "s1", "what now?")
	require.NoError(t, err)
	assert.False(t, node.IsError)

	nodes, err := svc.History.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestBuild_WithImages(t *testing.T) {
	svc := Build(Deps{
		Models: llm.NewMockClient(),
		Images: imagegen.NewMockClient(),
		Store:  store.NewMemoryStore(),
		Logger: zap.NewNop(),
	})
	require.NotNil(t, svc.Avatars)
	svc.Avatars.Start()
	svc.Avatars.Stop()
}

func TestBuild_CacheSizeFromConfig(t *testing.T) {
	t.Setenv("HISTORY_CACHE_SIZE", "1")
	svc := Build(Deps{Models: llm.NewMockClient(), Store: store.NewMemoryStore()})

	ctx := context.Background()
	for _, s := range []string{"a", "b", "c"} {
		_, err := svc.Navigator.Submit(ctx, s, "hello")
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, svc.History.CachedSessions(), 1)
}

func TestClients(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("AVATARS_ENABLED", "true")
	t.Setenv("IMAGE_PROVIDER", "mock")

	models, images, err := Clients(context.Background(), zap.NewNop(), true)
	require.NoError(t, err)
	assert.IsType(t, &llm.MockClient{}, models)
	assert.IsType(t, &imagegen.MockClient{}, images)

	_, images, err = Clients(context.Background(), zap.NewNop(), false)
	require.NoError(t, err)
	assert.Nil(t, images)
}

func TestClients_UnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "oracle")
	_, _, err := Clients(context.Background(), zap.NewNop(), false)
	assert.Error(t, err)
}
