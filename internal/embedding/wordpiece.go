package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// maxWordChars matches the BERT reference tokenizer: words longer than this
// map straight to [UNK] instead of being split.
const maxWordChars = 100

// WordPieceTokenizer tokenizes text against a BERT vocab.txt using greedy
// longest-match-first subword splitting. This reproduces the input regime
// all-MiniLM-L6-v2 was trained with, unlike SimpleTokenizer's hashed IDs.
type WordPieceTokenizer struct {
	vocab map[string]int64
	clsID int64
	sepID int64
	unkID int64
}

// NewWordPieceTokenizer loads a vocab file with one token per line; the line
// number is the token ID. The vocab must contain [CLS], [SEP], [UNK] and [PAD].
func NewWordPieceTokenizer(vocabPath string) (*WordPieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r\n")
		if token == "" {
			id++
			continue
		}
		vocab[token] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}

	t := &WordPieceTokenizer{vocab: vocab}
	for _, special := range []struct {
		token string
		dst   *int64
	}{
		{"[CLS]", &t.clsID},
		{"[SEP]", &t.sepID},
		{"[UNK]", &t.unkID},
	} {
		v, ok := vocab[special.token]
		if !ok {
			return nil, fmt.Errorf("vocab %s missing required token %s", vocabPath, special.token)
		}
		*special.dst = v
	}
	if _, ok := vocab["[PAD]"]; !ok {
		return nil, fmt.Errorf("vocab %s missing required token [PAD]", vocabPath)
	}
	return t, nil
}

// VocabSize returns the number of tokens in the vocabulary.
func (t *WordPieceTokenizer) VocabSize() int {
	return len(t.vocab)
}

// Tokenize produces padded token IDs up to maxTokens. Input is lowercased and
// split on whitespace and punctuation before subword splitting; text that does
// not fit is truncated so that [SEP] always terminates the sequence.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = t.clsID
	attentionMask[0] = 1

	pos := 1
words:
	for _, word := range basicTokenize(text) {
		for _, id := range t.wordPieceIDs(word) {
			if pos >= maxTokens-1 {
				break words
			}
			inputIDs[pos] = id
			attentionMask[pos] = 1
			pos++
		}
	}
	if pos < maxTokens {
		inputIDs[pos] = t.sepID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// wordPieceIDs splits a single word into vocab pieces, longest-match-first.
// Continuation pieces carry the "##" prefix. A word with no match becomes [UNK].
func (t *WordPieceTokenizer) wordPieceIDs(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int64{t.unkID}
	}
	var ids []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := int64(-1)
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unkID}
		}
		ids = append(ids, matched)
		start = end
	}
	return ids
}

// basicTokenize lowercases text and splits on whitespace, treating each
// punctuation rune as its own token (BERT basic tokenizer behavior).
func basicTokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens
}
