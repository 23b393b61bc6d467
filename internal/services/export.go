package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sufganiot/internal/models"
	"sufganiot/internal/utils"

	"github.com/xuri/excelize/v2"
)

const OverallSheet = "Overall"

var overallHeader = []interface{}{"Rank", "Sufgania", "Couple", "Taste", "Creativity", "Presentation", "Total", "Votes", "Comments"}

// ExportResults 把结果写成 XLSX：总榜一个工作表，每个类别一个工作表
func (s *RankingService) ExportResults(ctx context.Context, w io.Writer) error {
	results, err := s.Results(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OverallSheet); err != nil {
		return err
	}
	if err := writeSheet(f, OverallSheet, overallHeader, results.Rankings, func(r utils.EntryResult) []interface{} {
		return []interface{}{r.Rank, r.Name, r.CoupleName,
			r.Scores.Taste, r.Scores.Creativity, r.Scores.Presentation, r.Scores.Total,
			r.TotalVotes, len(r.Comments)}
	}); err != nil {
		return err
	}

	for _, c := range models.Categories {
		sheet := categorySheetName(c)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		header := []interface{}{"Rank", "Sufgania", "Couple", "Score", "Votes", "Average", "Overall rank"}
		err := writeSheet(f, sheet, header, results.CategoryRankings[c], func(r utils.EntryResult) []interface{} {
			return []interface{}{r.CategoryRank, r.Name, r.CoupleName,
				r.Scores.Of(c), categoryVotes(r, c), categoryAverage(r, c), r.Rank}
		})
		if err != nil {
			return err
		}
	}

	return f.Write(w)
}

func categorySheetName(c models.Category) string {
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows []utils.EntryResult, row func(utils.EntryResult) []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func categoryVotes(r utils.EntryResult, c models.Category) int {
	switch c {
	case models.CategoryTaste:
		return r.VoteCounts.Taste
	case models.CategoryCreativity:
		return r.VoteCounts.Creativity
	case models.CategoryPresentation:
		return r.VoteCounts.Presentation
	}
	return 0
}

func categoryAverage(r utils.EntryResult, c models.Category) float64 {
	switch c {
	case models.CategoryTaste:
		return r.AverageScores.Taste
	case models.CategoryCreativity:
		return r.AverageScores.Creativity
	case models.CategoryPresentation:
		return r.AverageScores.Presentation
	}
	return 0
}
