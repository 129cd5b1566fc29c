package benchmark

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DarlingtonDeveloper/Alexandria/internal/embedding"
	"github.com/DarlingtonDeveloper/Alexandria/pkg/utils"
)

func BenchmarkHashEmbedder_Embed(b *testing.B) {
	e := embedding.NewHashEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkHashEmbedder_EmbedBatch(b *testing.B) {
	e := embedding.NewHashEmbedder(384)
	ctx := context.Background()
	texts := make([]string, 32)
	for i := range texts {
		texts[i] = "benchmark query text for embedding with a few extra words"
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.EmbedBatch(ctx, texts)
	}
}

func BenchmarkSimpleTokenizer_Tokenize(b *testing.B) {
	tok := &embedding.SimpleTokenizer{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tok.Tokenize("the quick brown fox jumps over the lazy dog", 256)
	}
}

func BenchmarkWordPieceTokenizer_Tokenize(b *testing.B) {
	dir := b.TempDir()
	vocabPath := filepath.Join(dir, "vocab.txt")
	vocab := "[PAD]\n[UNK]\n[CLS]\n[SEP]\nthe\nquick\nbrown\nfox\njumps\nover\nlazy\ndog\n##s\n"
	if err := os.WriteFile(vocabPath, []byte(vocab), 0600); err != nil {
		b.Fatal(err)
	}
	tok, err := embedding.NewWordPieceTokenizer(vocabPath)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tok.Tokenize("the quick brown fox jumps over the lazy dog", 256)
	}
}

func BenchmarkNormalizeL2(b *testing.B) {
	vec := make([]float32, 384)
	for i := range vec {
		vec[i] = float32(i%7) + 0.5
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		utils.NormalizeL2(vec)
	}
}
