// internal/service/offer/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"
	"encoding/json"
	"time"

	"gpoffer/internal/service/offer/domain"
)

// ToOfferModel 把领域对象转换为数据库模型。
func ToOfferModel(o *domain.Offer) (*OfferModel, error) {
	tiersJSON, err := json.Marshal(o.Tiers)
	if err != nil {
		return nil, err
	}
	return &OfferModel{
		ID:                  o.ID,
		SellerID:            o.SellerID,
		Title:               o.Title,
		Description:         o.Description,
		Category:            o.Category,
		Region:              o.Region,
		BasePrice:           o.BasePrice,
		Tiers:               string(tiersJSON),
		Deadline:            o.Deadline,
		MinJoiners:          o.MinJoiners,
		Visibility:          string(o.Visibility),
		Featured:            o.Featured,
		Status:              string(o.Status),
		CurrentParticipants: o.CurrentParticipants,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		PublishedAt:         toNullTime(o.PublishedAt),
		ResolvedAt:          toNullTime(o.ResolvedAt),
	}, nil
}

// ToDomainOffer 把数据库模型还原为领域对象。
func ToDomainOffer(m *OfferModel) (*domain.Offer, error) {
	var tiers []domain.Tier
	if m.Tiers != "" {
		if err := json.Unmarshal([]byte(m.Tiers), &tiers); err != nil {
			return nil, err
		}
	}
	return &domain.Offer{
		ID:                  m.ID,
		SellerID:            m.SellerID,
		Title:               m.Title,
		Description:         m.Description,
		Category:            m.Category,
		Region:              m.Region,
		BasePrice:           m.BasePrice,
		Tiers:               tiers,
		Deadline:            m.Deadline,
		MinJoiners:          m.MinJoiners,
		Visibility:          domain.Visibility(m.Visibility),
		Featured:            m.Featured,
		Status:              domain.Status(m.Status),
		CurrentParticipants: m.CurrentParticipants,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		PublishedAt:         fromNullTime(m.PublishedAt),
		ResolvedAt:          fromNullTime(m.ResolvedAt),
	}, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
