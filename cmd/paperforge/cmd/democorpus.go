package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/memstore"
	"github.com/paperforge/paperforge-core/internal/model"
)

// demoTenant is the fixed tenant every CLI invocation queries against.
// There is no persistence layer in this core, so each process seeds the
// same small citation network from scratch rather than loading it from a
// previous run.
var demoTenant = mustParseTenantID("11111111-1111-4111-8111-111111111111")

func mustParseTenantID(s string) model.TenantID {
	tenant, err := model.ParseTenantID(s)
	if err != nil {
		panic(err)
	}
	return tenant
}

type demoPaper struct {
	id       string
	title    string
	cites    []string
	chunks   []string
	published string
}

var demoPapers = []demoPaper{
	{
		id:        "00000000-0000-4000-8000-000000000001",
		title:     "Attention Is All You Need",
		published: "2017-06-12",
		chunks: []string{
			"We propose the Transformer, a model architecture relying entirely on an attention mechanism to draw global dependencies between input and output, dispensing with recurrence and convolutions entirely.",
			"Self-attention relates different positions of a single sequence to compute a representation of the sequence, and has been used successfully in reading comprehension, summarization, and entailment.",
		},
	},
	{
		id:        "00000000-0000-4000-8000-000000000002",
		title:     "BERT: Pre-training of Deep Bidirectional Transformers for Language Understanding",
		published: "2018-10-11",
		cites:     []string{"00000000-0000-4000-8000-000000000001"},
		chunks: []string{
			"BERT is designed to pretrain deep bidirectional representations from unlabeled text by jointly conditioning on both left and right context in all layers.",
			"The pretrained BERT model can be fine-tuned with just one additional output layer to create state-of-the-art models for a wide range of downstream tasks.",
		},
	},
	{
		id:        "00000000-0000-4000-8000-000000000003",
		title:     "Language Models are Few-Shot Learners",
		published: "2020-05-28",
		cites:     []string{"00000000-0000-4000-8000-000000000001"},
		chunks: []string{
			"We show that scaling up language models greatly improves task-agnostic, few-shot performance, sometimes reaching competitiveness with prior fine-tuning approaches.",
			"GPT-3 is an autoregressive language model with 175 billion parameters, applied without any gradient updates or fine-tuning, with tasks specified purely via text interaction.",
		},
	},
	{
		id:        "00000000-0000-4000-8000-000000000004",
		title:     "Scaling Laws for Neural Language Models",
		published: "2020-01-23",
		cites:     []string{"00000000-0000-4000-8000-000000000001", "00000000-0000-4000-8000-000000000003"},
		chunks: []string{
			"We study empirical scaling laws for language model performance on the cross-entropy loss, finding that loss scales as a power-law with model size, dataset size, and compute.",
			"Larger models are significantly more sample-efficient, so compute-optimal training involves training very large models on a relatively modest amount of data.",
		},
	},
	{
		id:        "00000000-0000-4000-8000-000000000005",
		title:     "Retrieval-Augmented Generation for Knowledge-Intensive NLP Tasks",
		published: "2020-05-22",
		cites:     []string{"00000000-0000-4000-8000-000000000001", "00000000-0000-4000-8000-000000000002"},
		chunks: []string{
			"We introduce retrieval-augmented generation models, which combine a pretrained parametric memory with a non-parametric memory accessed through dense vector retrieval.",
			"RAG models retrieve documents from a corpus and condition generation on them, producing more specific, diverse, and factual answers than a purely parametric seq2seq model.",
		},
	},
}

// demoCorpusSummary describes what seedDemoCorpus loaded, for the
// ingest-demo command to print.
type demoCorpusSummary struct {
	Papers    int
	Chunks    int
	Citations int
}

// seedDemoCorpus builds an in-memory store holding the bundled citation
// network, embedding every chunk with embedder so vector search works
// against whatever Embedder the caller configured.
func seedDemoCorpus(ctx context.Context, embedder corpus.Embedder) (*memstore.Store, demoCorpusSummary, error) {
	store, err := memstore.New()
	if err != nil {
		return nil, demoCorpusSummary{}, fmt.Errorf("building demo store: %w", err)
	}

	summary := demoCorpusSummary{}

	for _, dp := range demoPapers {
		paperID, err := model.ParsePaperID(dp.id)
		if err != nil {
			return nil, demoCorpusSummary{}, fmt.Errorf("parsing demo paper id %s: %w", dp.id, err)
		}
		published, err := time.Parse("2006-01-02", dp.published)
		if err != nil {
			return nil, demoCorpusSummary{}, fmt.Errorf("parsing published date for %q: %w", dp.title, err)
		}
		store.AddPaper(model.Paper{
			ID:          paperID,
			TenantID:    demoTenant,
			Title:       dp.title,
			PublishedAt: published,
		})
		summary.Papers++

		for i, content := range dp.chunks {
			embedding, err := embedder.Embed(ctx, content)
			if err != nil {
				return nil, demoCorpusSummary{}, fmt.Errorf("embedding chunk %d of %q: %w", i, dp.title, err)
			}
			if err := store.AddChunk(model.Chunk{
				ID:         model.NewChunkID(),
				PaperID:    paperID,
				ChunkIndex: i,
				Content:    content,
				TokenCount: len(content) / 4,
				Embedding:  embedding,
			}); err != nil {
				return nil, demoCorpusSummary{}, fmt.Errorf("indexing chunk %d of %q: %w", i, dp.title, err)
			}
			summary.Chunks++
		}
	}

	for _, dp := range demoPapers {
		citing, err := model.ParsePaperID(dp.id)
		if err != nil {
			return nil, demoCorpusSummary{}, err
		}
		for _, citedID := range dp.cites {
			cited, err := model.ParsePaperID(citedID)
			if err != nil {
				return nil, demoCorpusSummary{}, err
			}
			store.AddCitation(citing, cited)
			summary.Citations++
		}
	}

	return store, summary, nil
}

// resolveSeedPaper finds a demo paper by exact UUID or by a case-insensitive
// substring match against its title, so citation/authority subcommands can
// be driven without copying UUIDs out of another command's output.
func resolveSeedPaper(nameOrID string) (model.PaperID, error) {
	if id, err := model.ParsePaperID(nameOrID); err == nil {
		return id, nil
	}

	needle := strings.ToLower(nameOrID)
	for _, dp := range demoPapers {
		if strings.Contains(strings.ToLower(dp.title), needle) {
			return model.ParsePaperID(dp.id)
		}
	}
	return model.PaperID{}, fmt.Errorf("no demo paper matches %q", nameOrID)
}
