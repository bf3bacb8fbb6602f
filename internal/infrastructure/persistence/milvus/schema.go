package milvus

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// 记忆集合字段名
const (
	fieldID      = "id"
	fieldVector  = "vector"
	fieldProject = "project"
	fieldMemType = "mem_type"
	fieldChapter = "chapter"
	fieldSection = "section"
	fieldText    = "text"
)

// memoriesSchema 记忆集合 Schema
func memoriesSchema(collection string, dim int) *entity.Schema {
	return entity.NewSchema().
		WithName(collection).
		WithDescription("Per-project novel memory entries for semantic retrieval").
		WithField(entity.NewField().
			WithName(fieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(64).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim))).
		WithField(entity.NewField().
			WithName(fieldProject).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(256)).
		WithField(entity.NewField().
			WithName(fieldMemType).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(32)).
		WithField(entity.NewField().
			WithName(fieldChapter).
			WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().
			WithName(fieldSection).
			WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().
			WithName(fieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(65535))
}

// PartitionName 项目分区名
// 项目名可能含空格等 Milvus 分区名不允许的字符，取 md5 十六进制保证合法且稳定
func PartitionName(project string) string {
	sum := md5.Sum([]byte(project))
	return "proj_" + hex.EncodeToString(sum[:])
}
