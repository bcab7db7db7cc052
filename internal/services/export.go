package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/repositories"
)

const (
	summarySheet    = "Summary"
	applicantsSheet = "Applicants"
	breakdownSheet  = "Resume Scores"
)

var bucketLabels = map[Bucket]string{
	BucketPassed:  "합격",
	BucketFailed:  "불합격",
	BucketPending: "보류",
}

type ExportService interface {
	Export(ctx context.Context, sessionID uuid.UUID) (*models.ExportReport, error)
	FindReport(id uuid.UUID) (*models.ExportReport, error)
	ListReports(sessionID uuid.UUID) ([]models.ExportReport, error)
}

type exportService struct {
	sessions SessionService
	scores   ScoreResolver
	storage  StorageService
	reports  repositories.ReportRepository
}

func NewExportService(
	sessions SessionService,
	scores ScoreResolver,
	storage StorageService,
	reports repositories.ReportRepository,
) ExportService {
	return &exportService{
		sessions: sessions,
		scores:   scores,
		storage:  storage,
		reports:  reports,
	}
}

func (s *exportService) Export(ctx context.Context, sessionID uuid.UUID) (*models.ExportReport, error) {
	snap, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	filename, path := s.storage.NewFile("report", ".xlsx")
	if err := WriteWorkbook(path, snap, s.scores); err != nil {
		return nil, err
	}

	report := &models.ExportReport{
		ID:           uuid.New(),
		SessionID:    sessionID,
		JobPostingID: snap.JobPostingID,
		Filename:     filename,
		FilePath:     path,
		Applicants:   len(snap.Posting.Applications),
		CreatedAt:    time.Now(),
	}
	if err := s.reports.Create(report); err != nil {
		if rmErr := s.storage.DeleteFile(filename); rmErr != nil {
			log.Printf("⚠️  Failed to clean up %s: %v\n", filename, rmErr)
		}
		return nil, err
	}

	log.Printf("📊 Exported %d applicants to %s\n", report.Applicants, filename)
	return report, nil
}

func (s *exportService) FindReport(id uuid.UUID) (*models.ExportReport, error) {
	return s.reports.FindByID(id)
}

func (s *exportService) ListReports(sessionID uuid.UUID) ([]models.ExportReport, error) {
	return s.reports.FindBySession(sessionID)
}

// WriteWorkbook renders the final evaluation of a session as an xlsx file.
func WriteWorkbook(path string, snap *Snapshot, scores ScoreResolver) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{applicantsSheet, breakdownSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	stats := ComputeStatistics(snap, scores)
	if err := writeSummary(f, snap, stats, headerStyle); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	list := BuildApplicantList(snap, scores, ScreenFinal, "")
	if err := writeApplicants(f, list, headerStyle); err != nil {
		return fmt.Errorf("failed to write applicants sheet: %w", err)
	}
	if err := writeBreakdown(f, snap, list, scores, headerStyle); err != nil {
		return fmt.Errorf("failed to write resume scores sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, snap *Snapshot, stats Statistics, headerStyle int) error {
	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 40)

	rows := [][]interface{}{
		{"채용 공고", snap.Posting.Title},
		{"생성 일시", time.Now().Format("2006-01-02 15:04:05")},
		{"전체 지원자", stats.Total},
		{"합격", stats.Final[BucketPassed]},
		{"불합격", stats.Final[BucketFailed]},
		{"보류", stats.Final[BucketPending]},
		{"합격률 (%)", stats.PassRate},
		{"평가 완료율 (%)", stats.CompletionRate},
		{"평균 점수", stats.AverageScore},
		{"최고 점수", stats.MaxScore},
		{"최저 점수", stats.MinScore},
	}
	for _, band := range stats.Distribution {
		rows = append(rows, []interface{}{"점수 " + band.Label, band.Count})
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"항목", "값"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeApplicants(f *excelize.File, list ApplicantList, headerStyle int) error {
	headers := []interface{}{"구분", "이름", "이메일", "지원 상태", "평가 상태", "점수", "메모"}
	if err := f.SetSheetRow(applicantsSheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(applicantsSheet, "A1", "G1", headerStyle); err != nil {
		return err
	}
	f.SetColWidth(applicantsSheet, "B", "C", 24)
	f.SetColWidth(applicantsSheet, "G", "G", 48)

	row := 2
	for _, g := range list.Groups {
		for _, r := range g.Rows {
			values := []interface{}{
				bucketLabels[g.Bucket],
				r.Applicant.Name,
				r.Applicant.Email,
				string(r.RemoteStatus),
				string(r.DisplayStatus),
				r.Score,
				r.Memo,
			}
			if err := f.SetSheetRow(applicantsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
				return err
			}
			row++
		}
	}

	if row > 2 {
		if err := f.AutoFilter(applicantsSheet, fmt.Sprintf("A1:G%d", row-1), nil); err != nil {
			return err
		}
	}
	return f.SetPanes(applicantsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeBreakdown(f *excelize.File, snap *Snapshot, list ApplicantList, scores ScoreResolver, headerStyle int) error {
	headers := []interface{}{"이름", "항목", "점수", "배점", "출처"}
	if err := f.SetSheetRow(breakdownSheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(breakdownSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	row := 2
	for _, g := range list.Groups {
		for _, r := range g.Rows {
			app, ok := snap.Posting.FindApplication(r.ApplicationID)
			if !ok {
				continue
			}
			for _, item := range scores.ResolveItemScores(app.Applicant.Name, snap.Posting, app.ResumeItemAnswers, snap.ResultFor(app)) {
				values := []interface{}{app.Applicant.Name, item.Name, item.Score, item.MaxScore, string(item.Source)}
				if err := f.SetSheetRow(breakdownSheet, fmt.Sprintf("A%d", row), &values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}
