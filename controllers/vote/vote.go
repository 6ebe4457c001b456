package vote

import (
	"encoding/json"
	"errors"
	"time"

	"voting-system/logger"
	"voting-system/middleware"
	candidateModel "voting-system/models/candidate"
	voteService "voting-system/services/vote"
	"voting-system/types"
	voteTypes "voting-system/types/vote"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller handles ballot submission and results
type Controller struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	Votes    *voteService.Service
	Validate *validator.Validate
}

// NewVoteController creates a new vote controller
func NewVoteController(db *gorm.DB, asyncLogger *logger.AsyncLogger, votes *voteService.Service) *Controller {
	return &Controller{
		DB:       db,
		Logger:   asyncLogger,
		Votes:    votes,
		Validate: validator.New(),
	}
}

// Candidates lists the ballot in insertion order
func (vc *Controller) Candidates(c *fiber.Ctx) error {
	var candidates []candidateModel.Candidate
	if err := vc.DB.Order("id ASC").Find(&candidates).Error; err != nil {
		logger.Error("Failed to list candidates", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to load candidates",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Candidates",
		Data:    candidates,
	})
}

// Cast records the authenticated voter's selections
func (vc *Controller) Cast(c *fiber.Ctx) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil || sess.VoterID == nil {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Phone number verification required before voting",
		})
	}

	var req voteTypes.CastVotesRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := vc.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	status, resp := vc.castResult(*sess.VoterID, req.CandidateIDs)
	vc.audit(c, status, resp)
	return c.Status(status).JSON(resp)
}

// castResult maps the vote service outcome to a response envelope.
func (vc *Controller) castResult(voterID uint, candidateIDs []uint) (int, types.ApiResponse) {
	recorded, err := vc.Votes.CastVotes(voterID, candidateIDs)
	if err == nil {
		remaining, remErr := vc.Votes.RemainingVotes(voterID)
		if remErr != nil {
			remaining = 0
		}
		return fiber.StatusCreated, types.ApiResponse{
			Status:  fiber.StatusCreated,
			Message: "Your vote has been recorded",
			Data: voteTypes.CastVotesResponse{
				Message:   "Your vote has been recorded",
				Recorded:  recorded,
				Remaining: remaining,
			},
		}
	}

	var quotaErr *voteService.QuotaError
	switch {
	case errors.Is(err, voteService.ErrNoCandidateSelected):
		return fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Please select at least one candidate",
		}
	case errors.Is(err, voteService.ErrTooManySelections):
		return fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Too many candidates selected",
		}
	case errors.Is(err, voteService.ErrUnknownCandidate):
		return fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: "One or more selected candidates do not exist",
		}
	case errors.As(err, &quotaErr):
		return fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: quotaErr.Error(),
			Data: voteTypes.CastVotesResponse{
				Message:   quotaErr.Error(),
				Recorded:  0,
				Remaining: quotaErr.Remaining,
			},
		}
	case errors.Is(err, voteService.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, types.ApiResponse{
			Status:  fiber.StatusServiceUnavailable,
			Message: "Storage temporarily unavailable, please resubmit",
		}
	}

	logger.Error("Failed to cast votes", err)
	return fiber.StatusInternalServerError, types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Failed to record your vote",
	}
}

// Results returns the tally ordered by vote count
func (vc *Controller) Results(c *fiber.Ctx) error {
	counts, err := vc.Votes.VoteCounts()
	if err != nil {
		return vc.resultsError(c, err)
	}
	total, err := vc.Votes.TotalVotes()
	if err != nil {
		return vc.resultsError(c, err)
	}
	today, err := vc.Votes.TotalVotesToday()
	if err != nil {
		return vc.resultsError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Election results",
		Data: voteTypes.ResultsResponse{
			Results:         counts,
			TotalVotes:      total,
			TotalVotesToday: today,
		},
	})
}

func (vc *Controller) resultsError(c *fiber.Ctx, err error) error {
	logger.Error("Failed to load results", err)
	if errors.Is(err, voteService.ErrStoreUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(types.ApiResponse{
			Status:  fiber.StatusServiceUnavailable,
			Message: "Storage temporarily unavailable, please retry",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Failed to load results",
	})
}

// audit pushes a ballot submission onto the async request log.
func (vc *Controller) audit(c *fiber.Ctx, status int, resp types.ApiResponse) {
	if vc.Logger == nil {
		return
	}
	respBody, _ := json.Marshal(resp)
	vc.Logger.Log(types.LogEntry{
		Method:       c.Method(),
		URL:          c.OriginalURL(),
		RequestBody:  string(c.Body()),
		ResponseBody: string(respBody),
		StatusCode:   status,
		CreatedAt:    time.Now(),
	})
}
