package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/repository"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
	"github.com/Verti90/commun-api/pkg/export"
	"github.com/Verti90/commun-api/pkg/storage"
)

type reportOccurrenceRepository interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]repository.InstanceOnDate, error)
	ParticipantsDetailed(ctx context.Context, instanceID string) ([]dto.ParticipantInfo, error)
}

type reportMealRepository interface {
	ListOnDate(ctx context.Context, date time.Time) ([]repository.SelectionWithResident, error)
}

// ReportFormat selects the rendered output of an export.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ReportExport is one rendered report ready for download. DownloadToken is
// set when an export archive is configured; it authenticates the download
// endpoint without a session.
type ReportExport struct {
	Payload       []byte
	ContentType   string
	Filename      string
	DownloadToken string
}

// ReportService builds staff-facing daily reports over materialized activity
// occurrences and meal selections, with CSV and PDF export.
type ReportService struct {
	occurrences reportOccurrenceRepository
	meals       reportMealRepository
	clock       *schedule.Clock
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	archive     *storage.Archive
	signer      *storage.DownloadSigner
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(occurrences reportOccurrenceRepository, meals reportMealRepository, clock *schedule.Clock, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		occurrences: occurrences,
		meals:       meals,
		clock:       clock,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// WithArchive enables export archiving and signed download links. Optional.
func (s *ReportService) WithArchive(archive *storage.Archive, signer *storage.DownloadSigner) *ReportService {
	s.archive = archive
	s.signer = signer
	return s
}

// ActivityReport lists every materialized occurrence on the civil date with
// its full roster.
func (s *ReportService) ActivityReport(ctx context.Context, date string) ([]dto.ActivityReportEntry, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	start := s.clock.StartOfDay(day).UTC()
	end := s.clock.EndOfDay(day).UTC()

	instances, err := s.occurrences.ListBetween(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
	}

	entries := make([]dto.ActivityReportEntry, 0, len(instances))
	for _, instance := range instances {
		participants, err := s.occurrences.ParticipantsDetailed(ctx, instance.InstanceID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster details")
		}
		entries = append(entries, dto.ActivityReportEntry{
			Name:         instance.ActivityName,
			DateTime:     s.clock.ToCivil(instance.OccurrenceAt).Format(time.RFC3339),
			Location:     instance.Location,
			Participants: participants,
		})
	}
	return entries, nil
}

// MealReport lists every meal selection on the civil date with resident
// details for the kitchen.
func (s *ReportService) MealReport(ctx context.Context, date string) ([]dto.MealReportEntry, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	selections, err := s.meals.ListOnDate(ctx, day.UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meal selections")
	}

	entries := make([]dto.MealReportEntry, 0, len(selections))
	for _, sel := range selections {
		entries = append(entries, dto.MealReportEntry{
			MealTime:    string(sel.MealTime),
			MainItem:    sel.MainItem,
			Protein:     sel.Protein,
			Drinks:      sel.DrinkList(),
			RoomService: sel.RoomService,
			GuestName:   sel.GuestName,
			GuestMeal:   sel.GuestMeal,
			Allergies:   sel.AllergyList(),
			Name:        sel.Name,
			RoomNumber:  sel.RoomNumber,
		})
	}
	return entries, nil
}

// ExportActivityReport renders the activity report in the requested format.
func (s *ReportService) ExportActivityReport(ctx context.Context, date string, format ReportFormat) (*ReportExport, error) {
	entries, err := s.ActivityReport(ctx, date)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"Activity", "Time", "Location", "Participants"}}
	for _, entry := range entries {
		names := make([]string, 0, len(entry.Participants))
		for _, p := range entry.Participants {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.RoomNumber))
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Activity":     entry.Name,
			"Time":         entry.DateTime,
			"Location":     entry.Location,
			"Participants": strings.Join(names, "; "),
		})
	}

	return s.render(dataset, fmt.Sprintf("Activity Report %s", date), fmt.Sprintf("activity-report-%s", date), format)
}

// ExportMealReport renders the meal report in the requested format.
func (s *ReportService) ExportMealReport(ctx context.Context, date string, format ReportFormat) (*ReportExport, error) {
	entries, err := s.MealReport(ctx, date)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"Resident", "Room", "Meal", "Main Item", "Protein", "Drinks", "Room Service", "Guest", "Allergies"}}
	for _, entry := range entries {
		roomService := "No"
		if entry.RoomService {
			roomService = "Yes"
		}
		guest := entry.GuestName
		if guest != "" && entry.GuestMeal != "" {
			guest = fmt.Sprintf("%s (%s)", entry.GuestName, entry.GuestMeal)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Resident":     entry.Name,
			"Room":         entry.RoomNumber,
			"Meal":         entry.MealTime,
			"Main Item":    entry.MainItem,
			"Protein":      entry.Protein,
			"Drinks":       strings.Join(entry.Drinks, ", "),
			"Room Service": roomService,
			"Guest":        guest,
			"Allergies":    strings.Join(entry.Allergies, ", "),
		})
	}

	return s.render(dataset, fmt.Sprintf("Meal Report %s", date), fmt.Sprintf("meal-report-%s", date), format)
}

// OpenExport resolves a signed download token to the archived export.
func (s *ReportService) OpenExport(token string) (*ReportExport, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export downloads are not enabled")
	}

	name, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}

	payload, err := s.archive.Read(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}

	contentType := "text/csv"
	if strings.HasSuffix(name, ".pdf") {
		contentType = "application/pdf"
	}
	return &ReportExport{Payload: payload, ContentType: contentType, Filename: name}, nil
}

func (s *ReportService) render(dataset export.Dataset, title, basename string, format ReportFormat) (*ReportExport, error) {
	var (
		payload     []byte
		contentType string
		filename    string
		err         error
	)

	switch format {
	case FormatCSV, "":
		payload, err = s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		contentType, filename = "text/csv", basename+".csv"
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		contentType, filename = "application/pdf", basename+".pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}

	result := &ReportExport{Payload: payload, ContentType: contentType, Filename: filename}
	s.archiveExport(result)
	return result, nil
}

// archiveExport stores a copy and attaches a signed link; failures only log,
// the caller still gets the inline payload.
func (s *ReportService) archiveExport(result *ReportExport) {
	if s.archive == nil || s.signer == nil {
		return
	}
	if _, err := s.archive.Save(result.Filename, result.Payload); err != nil {
		s.logger.Warn("archive report export", zap.Error(err))
		return
	}
	token, _, err := s.signer.Generate(result.Filename)
	if err != nil {
		s.logger.Warn("sign report download", zap.Error(err))
		return
	}
	result.DownloadToken = token
}

func (s *ReportService) parseDay(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "Missing date")
	}
	day, err := s.clock.ParseDate(date)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "Invalid date format")
	}
	return day, nil
}
