package milvus

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novelcraft/internal/domain/entity"
	"novelcraft/pkg/metrics"
)

// MemoryRepository 项目记忆仓储实现
// 所有记忆共用一个集合，按项目分区隔离
type MemoryRepository struct {
	client   *Client
	embedder embedding.Embedder
}

// NewMemoryRepository 创建记忆仓储
func NewMemoryRepository(client *Client, embedder embedding.Embedder) *MemoryRepository {
	return &MemoryRepository{client: client, embedder: embedder}
}

// embed 将文本转为向量
func (r *MemoryRepository) embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := r.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	out := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		out[i] = float32(v)
	}
	return out, nil
}

// ensurePartition 项目分区不存在时创建
func (r *MemoryRepository) ensurePartition(ctx context.Context, partition string) error {
	has, err := r.client.milvus.HasPartition(ctx, r.client.collection, partition)
	if err != nil {
		return fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		if err := r.client.milvus.CreatePartition(ctx, r.client.collection, partition); err != nil {
			return fmt.Errorf("failed to create partition: %w", err)
		}
	}
	return nil
}

// Add 写入一条记忆，返回条目 ID
func (r *MemoryRepository) Add(ctx context.Context, project, text string, tags entity.MemoryTags) (string, error) {
	ctx, span := tracer.Start(ctx, "milvus.MemoryRepository.Add",
		trace.WithAttributes(attribute.String("project", project)))
	defer span.End()

	partition := PartitionName(project)
	if err := r.ensurePartition(ctx, partition); err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("add", "error").Inc()
		return "", err
	}

	vector, err := r.embed(ctx, text)
	if err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("add", "error").Inc()
		return "", err
	}

	memType := tags.Type
	if memType == "" {
		memType = entity.MemoryTypeGeneral
	}

	id := uuid.NewString()
	_, err = r.client.milvus.Insert(ctx, r.client.collection, partition,
		milvusentity.NewColumnVarChar(fieldID, []string{id}),
		milvusentity.NewColumnFloatVector(fieldVector, r.client.dimension, [][]float32{vector}),
		milvusentity.NewColumnVarChar(fieldProject, []string{project}),
		milvusentity.NewColumnVarChar(fieldMemType, []string{memType}),
		milvusentity.NewColumnInt64(fieldChapter, []int64{int64(tags.Chapter)}),
		milvusentity.NewColumnInt64(fieldSection, []int64{int64(tags.Section)}),
		milvusentity.NewColumnVarChar(fieldText, []string{text}),
	)
	if err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("add", "error").Inc()
		return "", fmt.Errorf("failed to insert memory: %w", err)
	}

	metrics.MemoryOpsTotal.WithLabelValues("add", "success").Inc()
	return id, nil
}

// Search 检索与 query 最相关的至多 k 条文本
// 项目分区不存在时返回空结果而非错误
func (r *MemoryRepository) Search(ctx context.Context, project, query string, k int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "milvus.MemoryRepository.Search",
		trace.WithAttributes(
			attribute.String("project", project),
			attribute.Int("top_k", k),
		))
	defer span.End()

	partition := PartitionName(project)
	has, err := r.client.milvus.HasPartition(ctx, r.client.collection, partition)
	if err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		return []string{}, nil
	}

	vector, err := r.embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("search", "error").Inc()
		return nil, err
	}

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		r.client.collection,
		[]string{partition},
		"",
		[]string{fieldText},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		fieldVector,
		milvusentity.COSINE,
		k,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}

	var texts []string
	for _, result := range results {
		textCol, ok := result.Fields.GetColumn(fieldText).(*milvusentity.ColumnVarChar)
		if !ok {
			continue
		}
		for i := 0; i < result.ResultCount; i++ {
			texts = append(texts, textCol.Data()[i])
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(texts)))
	metrics.MemoryOpsTotal.WithLabelValues("search", "success").Inc()
	return texts, nil
}

// GetAll 返回项目的全部记忆条目
func (r *MemoryRepository) GetAll(ctx context.Context, project string) ([]*entity.MemoryEntry, error) {
	ctx, span := tracer.Start(ctx, "milvus.MemoryRepository.GetAll",
		trace.WithAttributes(attribute.String("project", project)))
	defer span.End()

	partition := PartitionName(project)
	has, err := r.client.milvus.HasPartition(ctx, r.client.collection, partition)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		return []*entity.MemoryEntry{}, nil
	}

	rs, err := r.client.milvus.Query(ctx,
		r.client.collection,
		[]string{partition},
		fmt.Sprintf(`%s == "%s"`, fieldProject, project),
		[]string{fieldID, fieldText, fieldMemType, fieldChapter, fieldSection},
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	var (
		ids, texts, types  []string
		chapters, sections []int64
	)
	for _, col := range rs {
		switch col.Name() {
		case fieldID:
			if c, ok := col.(*milvusentity.ColumnVarChar); ok {
				ids = c.Data()
			}
		case fieldText:
			if c, ok := col.(*milvusentity.ColumnVarChar); ok {
				texts = c.Data()
			}
		case fieldMemType:
			if c, ok := col.(*milvusentity.ColumnVarChar); ok {
				types = c.Data()
			}
		case fieldChapter:
			if c, ok := col.(*milvusentity.ColumnInt64); ok {
				chapters = c.Data()
			}
		case fieldSection:
			if c, ok := col.(*milvusentity.ColumnInt64); ok {
				sections = c.Data()
			}
		}
	}

	entries := make([]*entity.MemoryEntry, 0, len(ids))
	for i := range ids {
		e := &entity.MemoryEntry{ID: ids[i]}
		if i < len(texts) {
			e.Text = texts[i]
		}
		if i < len(types) {
			e.Tags.Type = types[i]
		}
		if i < len(chapters) {
			e.Tags.Chapter = int(chapters[i])
		}
		if i < len(sections) {
			e.Tags.Section = int(sections[i])
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteOne 删除单条记忆，返回是否确有删除
func (r *MemoryRepository) DeleteOne(ctx context.Context, project, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "milvus.MemoryRepository.DeleteOne",
		trace.WithAttributes(attribute.String("project", project)))
	defer span.End()

	partition := PartitionName(project)
	has, err := r.client.milvus.HasPartition(ctx, r.client.collection, partition)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		return false, nil
	}

	expr := fmt.Sprintf(`%s == "%s"`, fieldID, id)
	rs, err := r.client.milvus.Query(ctx, r.client.collection, []string{partition}, expr, []string{fieldID})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to query memory: %w", err)
	}
	exists := false
	for _, col := range rs {
		if col.Name() == fieldID && col.Len() > 0 {
			exists = true
		}
	}
	if !exists {
		return false, nil
	}

	if err := r.client.milvus.Delete(ctx, r.client.collection, partition, expr); err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("delete", "error").Inc()
		return false, fmt.Errorf("failed to delete memory: %w", err)
	}
	metrics.MemoryOpsTotal.WithLabelValues("delete", "success").Inc()
	return true, nil
}

// DeleteAll 清空项目的全部记忆，直接丢弃整个分区
func (r *MemoryRepository) DeleteAll(ctx context.Context, project string) error {
	ctx, span := tracer.Start(ctx, "milvus.MemoryRepository.DeleteAll",
		trace.WithAttributes(attribute.String("project", project)))
	defer span.End()

	partition := PartitionName(project)
	has, err := r.client.milvus.HasPartition(ctx, r.client.collection, partition)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		return nil
	}

	// 丢弃分区前需先释放
	_ = r.client.milvus.ReleasePartitions(ctx, r.client.collection, []string{partition})
	if err := r.client.milvus.DropPartition(ctx, r.client.collection, partition); err != nil {
		span.RecordError(err)
		metrics.MemoryOpsTotal.WithLabelValues("delete_all", "error").Inc()
		return fmt.Errorf("failed to drop partition: %w", err)
	}
	metrics.MemoryOpsTotal.WithLabelValues("delete_all", "success").Inc()
	return nil
}
