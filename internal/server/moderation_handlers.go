package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wardenbot/warden/internal/moderation"
)

type sanctionView struct {
	Type      string    `json:"type,omitempty"`
	Category  string    `json:"category,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Moderator int64     `json:"moderator,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Count     int64     `json:"count,omitempty"`
	Malformed bool      `json:"malformed,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

func viewEntries(entries []moderation.Entry) []sanctionView {
	views := make([]sanctionView, 0, len(entries))
	for _, e := range entries {
		if e.Malformed {
			views = append(views, sanctionView{Malformed: true, Raw: e.Raw})
			continue
		}
		views = append(views, sanctionView{
			Type:      string(e.Sanction.Kind),
			Category:  string(e.Sanction.Category),
			Reason:    e.Sanction.Reason,
			Moderator: e.Sanction.Moderator,
			IssuedAt:  e.Sanction.IssuedAt,
			Duration:  e.Sanction.Duration,
			Count:     e.Sanction.Count,
		})
	}
	return views
}

func (s *Server) Warn(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	cat, err := moderation.ParseWarnCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := s.svc.Warn(c.UserContext(), actorFrom(c), memberID, cat, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"count":             result.Count,
		"cap":               result.Cap,
		"case_id":           result.CaseID,
		"threshold_case_id": result.ThresholdCaseID,
	})
}

func (s *Server) WarningCounts(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	counts, err := s.svc.WarningCounts(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

func (s *Server) ClearWarnings(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	cat, err := moderation.ParseWarnCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	caseID, err := s.svc.ClearWarnings(c.UserContext(), actorFrom(c), memberID, cat)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Ban(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	var req struct {
		Category string `json:"category"`
		Reason   string `json:"reason"`
		Duration string `json:"duration"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	cat, err := moderation.ParseCategory(req.Category)
	if err != nil {
		return respondError(c, err)
	}
	caseID, err := s.svc.Ban(c.UserContext(), actorFrom(c), memberID, cat, req.Reason, req.Duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Unban(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	cat, err := moderation.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	caseID, err := s.svc.Unban(c.UserContext(), actorFrom(c), memberID, cat)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) GlobalBan(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	var req struct {
		Reason   string `json:"reason"`
		Duration string `json:"duration"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	caseID, err := s.svc.GlobalBan(c.UserContext(), actorFrom(c), memberID, req.Reason, req.Duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) GlobalUnban(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	caseID, err := s.svc.GlobalUnban(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Timeout(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	var req struct {
		Reason  string `json:"reason"`
		Minutes int    `json:"minutes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	caseID, err := s.svc.Timeout(c.UserContext(), actorFrom(c), memberID, req.Reason, req.Minutes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Sanctions(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	entries, err := s.svc.Sanctions(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(viewEntries(entries))
}

func (s *Server) ClearSanctions(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	caseID, err := s.svc.ClearSanctions(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Summary(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	summary, err := s.svc.Summary(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"sanction_count": summary.SanctionCount,
		"latest":         viewEntries(summary.Latest),
		"warnings":       summary.Warnings,
	})
}

func (s *Server) NoteAdd(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	entry, err := s.svc.NoteAdd(c.UserContext(), actorFrom(c), memberID, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

func (s *Server) NoteList(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	notes, err := s.svc.NoteList(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notes)
}

func (s *Server) NoteClear(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	caseID, err := s.svc.NoteClear(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) Case(c *fiber.Ctx) error {
	caseID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	record, err := s.svc.Case(c.UserContext(), actorFrom(c), caseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"case_id":      record.ID,
		"action":       record.Action,
		"moderator_id": record.ModeratorID,
		"target_id":    record.TargetID,
		"reason":       record.Reason,
		"category":     record.Category,
		"color":        record.Color,
		"timestamp":    record.Timestamp,
	})
}

func (s *Server) StaffList(c *fiber.Ctx) error {
	ids, err := s.svc.StaffList(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"staff": ids})
}

func (s *Server) StaffAdd(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	caseID, err := s.svc.StaffAdd(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}

func (s *Server) StaffRemove(c *fiber.Ctx) error {
	memberID, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	caseID, err := s.svc.StaffRemove(c.UserContext(), actorFrom(c), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"case_id": caseID})
}
