package runes

import (
	"context"

	"zhcheck/pkg/contract"
)

// Segmenter 逐字切分，不依赖任何模型；用于无词典环境与测试。
type Segmenter struct{}

// Segment 实现 contract.GeneralSegmenter。
func (Segmenter) Segment(ctx context.Context, s string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s)/3+1)
	for _, r := range s {
		out = append(out, string(r))
	}
	return out, nil
}

// NoEntities 不识别任何专名。
type NoEntities struct{}

// FindProperNouns 实现 contract.EntityRecognizer。
func (NoEntities) FindProperNouns(context.Context, string) ([]contract.Span, error) {
	return nil, nil
}
