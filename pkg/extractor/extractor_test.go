package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://discoverjesus.com/person/philip-apostle-of-jesus"

func TestExtract_PrimarySelectors(t *testing.T) {
	html := `<html><body>
		<h1>Site banner</h1>
		<h1 class="entry-title"> Philip, Apostle of Jesus </h1>
		<div class="entry-subtitle">The practical apostle.</div>
		<div class="summary-section">
			<p>Philip was the fifth apostle chosen.</p>
		</div>
	</body></html>`

	got, err := New(false).Extract(html, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "person/philip-apostle-of-jesus", got.ID)
	assert.Equal(t, "Philip, Apostle of Jesus", got.Title)
	assert.Equal(t, "The practical apostle.", got.ShortSummary)
	assert.Equal(t, "Philip was the fifth apostle chosen.", got.FullSummary)
	assert.Equal(t, pageURL, got.SourceURL)
	assert.True(t, got.HasContent())
}

func TestExtract_Fallbacks(t *testing.T) {
	html := `<html><body>
		<header><h2>Only a subheading</h2></header>
		<p class="Page-Summary-Text">A short take.</p>
		<main class="site-content">
			<p> First. </p>
			<p>Second.</p>
			<p>Third.</p>
			<p>Fourth is dropped.</p>
		</main>
	</body></html>`

	got, err := New(false).Extract(html, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Only a subheading", got.Title, "falls back to any heading")
	assert.Equal(t, "A short take.", got.ShortSummary, "class match is case-insensitive")
	assert.Equal(t, "First.\nSecond.\nThird.", got.FullSummary)
}

func TestExtract_FirstH1Fallback(t *testing.T) {
	html := `<html><body><h2>Later</h2><h1>Event Title</h1></body></html>`

	got, err := New(false).Extract(html, "https://discoverjesus.com/event/baptism-of-jesus")
	require.NoError(t, err)
	assert.Equal(t, "Event Title", got.Title)
	assert.Equal(t, "event/baptism-of-jesus", got.ID)
}

func TestExtract_EmptyPrimaryFallsBack(t *testing.T) {
	html := `<html><body>
		<div class="summary-section">   </div>
		<article class="entry">
			<p>Only paragraph.</p>
		</article>
	</body></html>`

	got, err := New(false).Extract(html, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "Only paragraph.", got.FullSummary)
}

func TestExtract_NoContent(t *testing.T) {
	html := `<html><body><h1>Title only</h1><p>Loose text.</p></body></html>`

	got, err := New(false).Extract(html, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Title only", got.Title)
	assert.Empty(t, got.ShortSummary)
	assert.Empty(t, got.FullSummary)
	assert.False(t, got.HasContent())
}

func TestExtract_ReadabilityFallback(t *testing.T) {
	html := `<html><head><title>Sonship with God</title>
		<meta name="description" content="What it means to be a child of God."></head>
		<body><h1>Sonship with God</h1>
		<div><p>Sonship with God is the central teaching of the kingdom. Every person who
		sincerely desires to do the will of the Father is a child of God, and this
		relationship is freely offered to all who accept it.</p></div>
		</body></html>`

	without, err := New(false).Extract(html, "https://discoverjesus.com/topic/sonship-with-god")
	require.NoError(t, err)
	assert.Empty(t, without.FullSummary)

	with, err := New(true).Extract(html, "https://discoverjesus.com/topic/sonship-with-god")
	require.NoError(t, err)
	assert.Equal(t, "What it means to be a child of God.", with.FullSummary)
}

func TestPageID(t *testing.T) {
	assert.Equal(t, "topic/true-values", PageID("https://discoverjesus.com/topic/true-values"))
	assert.Equal(t, "topic/true-values", PageID("https://discoverjesus.com/topic/true-values/"))
	assert.Equal(t, "person", PageID("https://discoverjesus.com/person"))
}
