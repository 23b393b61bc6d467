package utils

import (
	"sort"

	"sufganiot/internal/models"
)

// Scores 各类别得分及总分
type Scores struct {
	Taste        int `json:"taste"`
	Creativity   int `json:"creativity"`
	Presentation int `json:"presentation"`
	Total        int `json:"total"`
}

// Of 返回指定类别得分，未知类别返回 0
func (s Scores) Of(c models.Category) int {
	switch c {
	case models.CategoryTaste:
		return s.Taste
	case models.CategoryCreativity:
		return s.Creativity
	case models.CategoryPresentation:
		return s.Presentation
	}
	return 0
}

func (s *Scores) add(c models.Category, points int) {
	switch c {
	case models.CategoryTaste:
		s.Taste += points
	case models.CategoryCreativity:
		s.Creativity += points
	case models.CategoryPresentation:
		s.Presentation += points
	}
}

type VoteCounts struct {
	Taste        int `json:"taste"`
	Creativity   int `json:"creativity"`
	Presentation int `json:"presentation"`
}

func (v *VoteCounts) add(c models.Category) {
	switch c {
	case models.CategoryTaste:
		v.Taste++
	case models.CategoryCreativity:
		v.Creativity++
	case models.CategoryPresentation:
		v.Presentation++
	}
}

type AverageScores struct {
	Taste        float64 `json:"taste"`
	Creativity   float64 `json:"creativity"`
	Presentation float64 `json:"presentation"`
}

type ResultComment struct {
	Text    string `json:"text"`
	VoterID string `json:"voterId"`
}

// EntryResult 排行榜中的一行
type EntryResult struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PhotoURL      string          `json:"photoUrl"`
	CoupleID      string          `json:"coupleId"`
	CoupleName    string          `json:"coupleName"`
	Scores        Scores          `json:"scores"`
	AverageScores AverageScores   `json:"averageScores"`
	VoteCounts    VoteCounts      `json:"voteCounts"`
	TotalVotes    int             `json:"totalVotes"`
	Comments      []ResultComment `json:"comments"`
	Rank          int             `json:"rank"`
	CategoryRank  int             `json:"categoryRank,omitempty"`
}

// Snapshot 计分所需的全部数据，由调用方一次性加载
type Snapshot struct {
	Entries  []models.Sufgania
	Couples  []models.Couple
	Votes    []models.Vote
	Comments []models.Comment
}

// Points 名次换算分数：第 1 名得 n 分，第 n 名得 1 分
func Points(n, rank int) int {
	return n - rank + 1
}

// ComputeRankings 按总分降序生成排行榜。
// 同分时按名称升序、再按 ID 升序，保证结果可复现。无副作用。
func ComputeRankings(s Snapshot) []EntryResult {
	n := len(s.Entries)
	results := make([]EntryResult, 0, n)
	if n == 0 {
		return results
	}

	coupleNames := make(map[string]string, len(s.Couples))
	for _, c := range s.Couples {
		coupleNames[c.ID] = c.Name
	}

	index := make(map[string]int, n)
	for i, e := range s.Entries {
		index[e.ID] = i
		results = append(results, EntryResult{
			ID:         e.ID,
			Name:       e.Name,
			PhotoURL:   e.PhotoURL,
			CoupleID:   e.CoupleID,
			CoupleName: coupleNames[e.CoupleID],
			Comments:   []ResultComment{},
		})
	}

	for _, v := range s.Votes {
		i, ok := index[v.SufganiaID]
		if !ok || !v.Category.Valid() {
			continue
		}
		r := &results[i]
		r.Scores.add(v.Category, Points(n, v.Rank))
		r.VoteCounts.add(v.Category)
		r.TotalVotes++
	}

	comments := make([]models.Comment, len(s.Comments))
	copy(comments, s.Comments)
	sort.SliceStable(comments, func(a, b int) bool {
		if !comments[a].CreatedAt.Equal(comments[b].CreatedAt) {
			return comments[a].CreatedAt.Before(comments[b].CreatedAt)
		}
		return comments[a].ID < comments[b].ID
	})
	for _, c := range comments {
		if i, ok := index[c.SufganiaID]; ok {
			results[i].Comments = append(results[i].Comments, ResultComment{Text: c.Text, VoterID: c.CoupleID})
		}
	}

	for i := range results {
		r := &results[i]
		r.Scores.Total = r.Scores.Taste + r.Scores.Creativity + r.Scores.Presentation
		r.AverageScores = AverageScores{
			Taste:        average(r.Scores.Taste, r.VoteCounts.Taste),
			Creativity:   average(r.Scores.Creativity, r.VoteCounts.Creativity),
			Presentation: average(r.Scores.Presentation, r.VoteCounts.Presentation),
		}
	}

	sortResults(results, func(r EntryResult) int { return r.Scores.Total })
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// ComputeCategoryRankings 按单一类别得分排序，写入 CategoryRank，Rank 保持总榜名次
func ComputeCategoryRankings(s Snapshot, category models.Category) []EntryResult {
	results := ComputeRankings(s)
	sortResults(results, func(r EntryResult) int { return r.Scores.Of(category) })
	for i := range results {
		results[i].CategoryRank = i + 1
	}
	return results
}

func sortResults(results []EntryResult, key func(EntryResult) int) {
	sort.SliceStable(results, func(a, b int) bool {
		ka, kb := key(results[a]), key(results[b])
		if ka != kb {
			return ka > kb
		}
		if results[a].Name != results[b].Name {
			return results[a].Name < results[b].Name
		}
		return results[a].ID < results[b].ID
	})
}

func average(score, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(score) / float64(count)
}
