package integrate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"costetl/internal/model"
	"costetl/internal/parser"
)

// exactScore 规范化后完全一致的得分
const exactScore = 100.0

// ReferenceSource 既存系统参照数据来源
type ReferenceSource interface {
	ExistingProjects(ctx context.Context) ([]model.ReferenceProject, error)
	ExistingVendors(ctx context.Context) ([]model.ReferenceVendor, error)
}

// Options 匹配配置
type Options struct {
	Patterns    []model.ReplacePattern // 协力会社名称规范化规则
	EnableFuzzy bool                   // 是否启用模糊匹配
	Threshold   float64                // 模糊匹配接受阈值（0-100）
}

// Matcher 项目/协力会社匹配器，参照数据按实例懒加载并缓存
type Matcher struct {
	source ReferenceSource
	opts   Options
	logger logrus.FieldLogger

	mu             sync.Mutex
	projects       []model.ReferenceProject
	vendors        []model.ReferenceVendor
	projectsLoaded bool
	vendorsLoaded  bool
}

// NewMatcher 创建匹配器；source 为 nil 时参照数据为空
func NewMatcher(source ReferenceSource, opts Options, logger logrus.FieldLogger) *Matcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Matcher{
		source: source,
		opts:   opts,
		logger: logger,
	}
}

// Reset 清空缓存，下次匹配时重新加载参照数据
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects, m.vendors = nil, nil
	m.projectsLoaded, m.vendorsLoaded = false, false
}

// Patterns 名称规范化规则
func (m *Matcher) Patterns() []model.ReplacePattern {
	return m.opts.Patterns
}

// MatchProject 按 PJCD 精确匹配（忽略大小写和首尾空白），不做模糊匹配
func (m *Matcher) MatchProject(ctx context.Context, code string) *int64 {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	for _, p := range m.referenceProjects(ctx) {
		if p.Code != "" && strings.EqualFold(strings.TrimSpace(p.Code), code) {
			id := p.ID
			m.logger.WithFields(logrus.Fields{"pjcd": code, "existing_id": id}).Debug("project matched")
			return &id
		}
	}
	m.logger.WithField("pjcd", code).Debug("project not matched")
	return nil
}

// MatchVendor 先比较规范化名称，再按相似度模糊匹配
// 低于阈值时不返回匹配结果，但仍返回最高得分
func (m *Matcher) MatchVendor(ctx context.Context, name string) model.MatchResult {
	if strings.TrimSpace(name) == "" {
		return model.MatchResult{}
	}
	vendors := m.referenceVendors(ctx)
	if len(vendors) == 0 {
		return model.MatchResult{}
	}

	normalized := parser.NormalizeVendorName(name, m.opts.Patterns)
	for _, v := range vendors {
		if parser.NormalizeVendorName(v.Name, m.opts.Patterns) == normalized {
			return matched(v, exactScore)
		}
	}

	if !m.opts.EnableFuzzy {
		return model.MatchResult{}
	}

	best := rank(normalized, vendors, 1)
	if len(best) == 0 {
		return model.MatchResult{}
	}
	top := best[0]
	log := m.logger.WithFields(logrus.Fields{
		"input_name": name,
		"best_name":  top.Name,
		"best_score": top.Score,
		"threshold":  m.opts.Threshold,
	})
	if top.Score >= m.opts.Threshold {
		log.Debug("vendor fuzzy matched")
		return matched(model.ReferenceVendor{ID: top.ID, Name: top.Name}, top.Score)
	}
	log.Debug("vendor not matched")
	return model.MatchResult{Confidence: top.Score}
}

// Candidates 与原始输入最相近的参照协力会社（对账用）
func (m *Matcher) Candidates(ctx context.Context, name string, limit int) []model.Candidate {
	return rank(name, m.referenceVendors(ctx), limit)
}

func matched(v model.ReferenceVendor, score float64) model.MatchResult {
	id, name := v.ID, v.Name
	return model.MatchResult{MatchedID: &id, MatchedName: &name, Confidence: score}
}

// rank 按得分降序排列；同分时名称字典序、ID 升序
func rank(input string, vendors []model.ReferenceVendor, limit int) []model.Candidate {
	out := make([]model.Candidate, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, model.Candidate{ID: v.ID, Name: v.Name, Score: Similarity(input, v.Name)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Similarity 字符级相似度 0-100：100 * 2 * LCS / (len(a) + len(b))，按 rune 计算
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return exactScore
	}
	return exactScore * 2 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength 最长公共子序列长度（两行滚动 DP）
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// referenceProjects 懒加载既存项目，失败时降级为空列表
func (m *Matcher) referenceProjects(ctx context.Context) []model.ReferenceProject {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.projectsLoaded {
		return m.projects
	}
	m.projectsLoaded = true
	if m.source == nil {
		return nil
	}

	projects, err := m.source.ExistingProjects(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("could not load existing projects")
		return nil
	}
	m.projects = projects
	m.logger.WithField("count", len(projects)).Info("loaded existing projects")
	return m.projects
}

// referenceVendors 懒加载既存协力会社，失败时降级为空列表
func (m *Matcher) referenceVendors(ctx context.Context) []model.ReferenceVendor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vendorsLoaded {
		return m.vendors
	}
	m.vendorsLoaded = true
	if m.source == nil {
		return nil
	}

	vendors, err := m.source.ExistingVendors(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("could not load existing vendors")
		return nil
	}
	m.vendors = vendors
	m.logger.WithField("count", len(vendors)).Info("loaded existing vendors")
	return m.vendors
}
