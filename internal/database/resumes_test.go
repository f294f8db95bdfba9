package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"resume-forge/internal/models"

	"github.com/stretchr/testify/require"
)

// testResumeID pads a readable seed out to the fixed 21-character id width.
func testResumeID(seed string) string {
	if len(seed) > 21 {
		return seed[:21]
	}
	for len(seed) < 21 {
		seed += "x"
	}
	return seed
}

func createTestResume(t *testing.T, ownerID int64, id, filename string) *models.Resume {
	t.Helper()

	resume, err := testStore.CreateResume(context.Background(), CreateResumeParams{
		ID:           id,
		OwnerID:      ownerID,
		Title:        "My Resume",
		Filename:     filename,
		SourceFormat: models.FormatTXT,
		OriginalText: "Experienced software engineer with ten years of backend work.",
	})
	require.NoError(t, err)
	require.NotNil(t, resume)
	return resume
}

func TestCreateResume(t *testing.T) {
	owner := createTestUser(t, "resume_create@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_create_000000id"), "cv.txt")

	require.Equal(t, owner.ID, resume.OwnerID)
	require.Equal(t, models.StatusUploaded, resume.Status)
	require.Nil(t, resume.Analysis)
	require.Empty(t, resume.JobMatches)
	require.Empty(t, resume.Versions)
	require.NotZero(t, resume.CreatedAt)
}

func TestCreateResumeDuplicateFilename(t *testing.T) {
	owner := createTestUser(t, "resume_dup@example.com")
	createTestResume(t, owner.ID, testResumeID("resume_dup_00000000id"), "cv.txt")

	_, err := testStore.CreateResume(context.Background(), CreateResumeParams{
		ID:           testResumeID("resume_dup_00000001id"),
		OwnerID:      owner.ID,
		Title:        "Second",
		Filename:     "cv.txt",
		SourceFormat: models.FormatTXT,
		OriginalText: "text",
	})
	require.ErrorIs(t, err, ErrDuplicateFilename)

	// the same filename under a different owner is fine
	other := createTestUser(t, "resume_dup_other@example.com")
	createTestResume(t, other.ID, testResumeID("resume_dup_00000002id"), "cv.txt")
}

func TestGetResumeForOwnerScoping(t *testing.T) {
	owner := createTestUser(t, "resume_scope@example.com")
	stranger := createTestUser(t, "resume_stranger@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_scope_000000id"), "cv.txt")

	found, err := testStore.GetResumeForOwner(context.Background(), resume.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	// another user's lookup behaves exactly like a missing record
	leaked, err := testStore.GetResumeForOwner(context.Background(), resume.ID, stranger.ID)
	require.NoError(t, err)
	require.Nil(t, leaked)
}

func TestListResumesPagination(t *testing.T) {
	owner := createTestUser(t, "resume_list@example.com")
	for i := 0; i < 5; i++ {
		createTestResume(t, owner.ID, testResumeID(fmt.Sprintf("resume_list_%d", i)), fmt.Sprintf("cv-%d.txt", i))
	}

	page, err := testStore.ListResumes(context.Background(), owner.ID, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)

	rest, err := testStore.ListResumes(context.Background(), owner.ID, 3, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)

	count, err := testStore.CountResumes(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
}

func TestSaveAnalysisRoundTrip(t *testing.T) {
	owner := createTestUser(t, "resume_analysis@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_analysis_000id"), "cv.txt")

	analysis := &models.Analysis{
		Score:            81,
		Strengths:        []string{"clear impact statements"},
		Weaknesses:       []string{"missing metrics"},
		Keywords:         []string{"go", "postgres"},
		ATSCompatibility: 74,
		GeneratedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	err := testStore.SaveAnalysis(context.Background(), resume.ID, analysis, models.StatusAnalyzed)
	require.NoError(t, err)

	found, err := testStore.GetResumeForOwner(context.Background(), resume.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAnalyzed, found.Status)
	require.NotNil(t, found.Analysis)
	require.Equal(t, 81, found.Analysis.Score)
	require.Equal(t, 74, found.Analysis.ATSCompatibility)
	require.Equal(t, analysis.Keywords, found.Analysis.Keywords)

	err = testStore.SaveAnalysis(context.Background(), testResumeID("missing_resume_00000i"), analysis, models.StatusAnalyzed)
	require.ErrorIs(t, err, ErrResumeNotFound)
}

func TestSaveEnhancementAppendsVersion(t *testing.T) {
	owner := createTestUser(t, "resume_enhance@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_enhance_0000id"), "cv.txt")

	for i, name := range []string{"Backend Engineer", "Platform Engineer"} {
		err := testStore.SaveEnhancement(context.Background(), resume.ID, SaveEnhancementParams{
			EnhancedText:   fmt.Sprintf("enhanced content %d", i),
			TargetRole:     name,
			TargetIndustry: "software",
			Version: models.Version{
				Name:      name,
				Content:   fmt.Sprintf("enhanced content %d", i),
				CreatedAt: time.Now().UTC(),
			},
		})
		require.NoError(t, err)
	}

	found, err := testStore.GetResumeForOwner(context.Background(), resume.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusEnhanced, found.Status)
	require.NotNil(t, found.EnhancedText)
	require.Equal(t, "enhanced content 1", *found.EnhancedText)
	require.Len(t, found.Versions, 2)
	require.Equal(t, "Backend Engineer", found.Versions[0].Name)
	require.Equal(t, "Platform Engineer", found.Versions[1].Name)
}

func TestAppendJobMatchKeepsStatus(t *testing.T) {
	owner := createTestUser(t, "resume_match@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_match_000000id"), "cv.txt")

	match := models.JobMatch{
		JobTitle:        "Senior Go Developer",
		CompanyName:     "Acme",
		MatchScore:      68,
		MatchedKeywords: []string{"go"},
		MissingKeywords: []string{"kubernetes"},
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, testStore.AppendJobMatch(context.Background(), resume.ID, match))
	require.NoError(t, testStore.AppendJobMatch(context.Background(), resume.ID, match))

	found, err := testStore.GetResumeForOwner(context.Background(), resume.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusUploaded, found.Status)
	require.Len(t, found.JobMatches, 2)
	require.Equal(t, "Senior Go Developer", found.JobMatches[0].JobTitle)
	require.Equal(t, 68, found.JobMatches[0].MatchScore)
}

func TestUpdateResumeTitleAndDelete(t *testing.T) {
	owner := createTestUser(t, "resume_update@example.com")
	stranger := createTestUser(t, "resume_update_other@example.com")
	resume := createTestResume(t, owner.ID, testResumeID("resume_update_00000id"), "cv.txt")

	renamed, err := testStore.UpdateResumeTitle(context.Background(), resume.ID, owner.ID, "Sharper Title")
	require.NoError(t, err)
	require.NotNil(t, renamed)
	require.Equal(t, "Sharper Title", renamed.Title)

	// owner scoping applies to writes too
	missed, err := testStore.UpdateResumeTitle(context.Background(), resume.ID, stranger.ID, "stolen")
	require.NoError(t, err)
	require.Nil(t, missed)

	deleted, err := testStore.DeleteResume(context.Background(), resume.ID, stranger.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = testStore.DeleteResume(context.Background(), resume.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	exists, err := testStore.ResumeExists(context.Background(), resume.ID)
	require.NoError(t, err)
	require.False(t, exists)
}
