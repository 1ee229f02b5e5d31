package provenance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-app/veridoc/test/testutil"
)

func pageCountOf(t *testing.T, b []byte) int {
	t.Helper()
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(b), conf)
	require.NoError(t, err)
	return n
}

func TestEmbedPreservesPageCount(t *testing.T) {
	embedder := NewEmbedder("VeriDoc", "VeriDoc SAS", "verification@veridoc.example")
	in := testutil.BuildPDF(t, 3)
	original := append([]byte(nil), in...)

	out, hash, err := embedder.Embed(context.Background(), in,
		"UID-20250314-092653-USR1-CPY1-0011223344556677", "DOC-20250314-092653-8899aabbccddeeff", nil)
	require.NoError(t, err)
	require.Equal(t, ContentHash(original), hash)
	require.Equal(t, original, in, "input bytes must not be mutated")
	require.NotEqual(t, original, out)
	require.Equal(t, 3, pageCountOf(t, out))
}

func TestEmbedTwiceWithSignature(t *testing.T) {
	embedder := NewEmbedder("VeriDoc", "VeriDoc SAS", "verification@veridoc.example")
	in := testutil.BuildPDF(t, 2)

	first, firstHash, err := embedder.Embed(context.Background(), in,
		"UID-20250314-092653-USR1-CPY1-0011223344556677", "DOC-20250314-092653-8899aabbccddeeff", nil)
	require.NoError(t, err)
	require.Equal(t, 2, pageCountOf(t, first))

	sig := &SignatureInfo{Label: "Signé par Jean Dupont", SignedAt: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)}
	second, secondHash, err := embedder.Embed(context.Background(), first,
		"UID-20250314-092653-USR1-CPY1-0011223344556677", "DOC-20250314-092653-8899aabbccddeeff", sig)
	require.NoError(t, err)
	require.Equal(t, 2, pageCountOf(t, second))

	// Each call hashes the bytes it was handed at that moment.
	require.Equal(t, ContentHash(in), firstHash)
	require.Equal(t, ContentHash(first), secondHash)
	require.NotEqual(t, firstHash, secondHash)
}

func TestEmbedFailsOnGarbage(t *testing.T) {
	embedder := NewEmbedder("VeriDoc", "VeriDoc SAS", "verification@veridoc.example")
	in := []byte("definitely not a pdf")
	out, hash, err := embedder.Embed(context.Background(), in, "uid", "token", nil)
	require.Error(t, err)
	require.Nil(t, out)
	require.Equal(t, ContentHash(in), hash, "hash is reported even when embedding fails")
}

func TestContentHashDeterministic(t *testing.T) {
	require.Equal(t, ContentHash([]byte("abc")), ContentHash([]byte("abc")))
	require.NotEqual(t, ContentHash([]byte("abc")), ContentHash([]byte("abd")))
	require.Len(t, ContentHash(nil), 64)
}
