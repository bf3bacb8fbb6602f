// Package eino 注册 Eino 生成调用的全局观测回调
package eino

import "context"

type agentKey struct{}

// WithAgent 在 Context 中标记当前生成所属的角色，供回调上报时使用
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentKey{}, agent)
}

// AgentFromContext 取出角色标记，未标记时返回 unknown
func AgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(agentKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
