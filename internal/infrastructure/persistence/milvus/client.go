// Package milvus 提供基于 Milvus 的项目记忆库实现
package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel"

	"novelcraft/internal/config"
)

var tracer = otel.Tracer("milvus")

// Client Milvus 客户端
type Client struct {
	milvus     client.Client
	collection string
	config     *config.MilvusConfig
	dimension  int
}

// NewClient 创建 Milvus 客户端并确保记忆集合就绪
func NewClient(ctx context.Context, cfg *config.MilvusConfig, dimension int) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	clientCfg := client.Config{Address: addr}
	if cfg.User != "" && cfg.Password != "" {
		clientCfg.Username = cfg.User
		clientCfg.Password = cfg.Password
	}

	milvusClient, err := client.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	c := &Client{
		milvus:     milvusClient,
		collection: cfg.Collection,
		config:     cfg,
		dimension:  dimension,
	}
	if err := c.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureCollection 集合不存在时创建并建立 HNSW 索引
func (c *Client) ensureCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.ensureCollection")
	defer span.End()

	has, err := c.milvus.HasCollection(ctx, c.collection)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !has {
		schema := memoriesSchema(c.collection, c.dimension)
		if err := c.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, c.config.HNSWM, c.config.HNSWEfConstruction)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to build index: %w", err)
		}
		if err := c.milvus.CreateIndex(ctx, c.collection, fieldVector, idx, false); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := c.milvus.LoadCollection(ctx, c.collection, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Milvus 获取底层 Milvus 客户端
func (c *Client) Milvus() client.Client {
	return c.milvus
}

// Close 关闭 Milvus 连接
func (c *Client) Close() error {
	return c.milvus.Close()
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.HealthCheck")
	defer span.End()

	_, err := c.milvus.HasCollection(ctx, c.collection)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
