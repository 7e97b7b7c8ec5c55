package diag

import (
	"io"
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// 进程内指标注册表。命名：
//   op.<comp>.<stage>.<result>   计数
//   error.<comp>.<code>          计数
//   duration.<comp>.<stage>      计时
//   file.tokens / file.fallback_runs / file.unknown  每文件直方图
var registry = metrics.NewRegistry()

// histogram 按名惰性注册。
func histogram(name string) metrics.Histogram {
	return registry.GetOrRegister(name, func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewUniformSample(512))
	}).(metrics.Histogram)
}

// IncOp 累加操作计数（result=success|error|skip）。
func IncOp(comp, stage, result string) {
	metrics.GetOrRegisterCounter("op."+comp+"."+stage+"."+result, registry).Inc(1)
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metrics.GetOrRegisterCounter("error."+comp+"."+code, registry).Inc(1)
}

// ObserveDuration 记录阶段耗时。
func ObserveDuration(comp, stage string, d time.Duration) {
	metrics.GetOrRegisterTimer("duration."+comp+"."+stage, registry).Update(d)
}

// ObserveFile 记录单文件分析规模。
func ObserveFile(tokens, fallbackRuns, unknown int) {
	histogram("file.tokens").Update(int64(tokens))
	histogram("file.fallback_runs").Update(int64(fallbackRuns))
	histogram("file.unknown").Update(int64(unknown))
}

// Counter 返回计数当前值（不存在为 0）。
func Counter(name string) int64 {
	if c, ok := registry.Get(name).(metrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// WriteMetrics 以文本形式输出当前指标快照。
func WriteMetrics(w io.Writer) {
	metrics.WriteOnce(registry, w)
}

// ResetMetrics 清空全部指标。
func ResetMetrics() {
	registry.UnregisterAll()
}

// HistogramCount 返回直方图样本数（不存在为 0）。
func HistogramCount(name string) int64 {
	if h, ok := registry.Get(name).(metrics.Histogram); ok {
		return h.Count()
	}
	return 0
}
