package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dramabox_webapp/internal/logger"
	"dramabox_webapp/internal/repository"
)

var ErrSelfReferral = errors.New("cannot refer yourself")

const (
	ReferralStatusOK              = "ok"
	ReferralStatusAlreadyReferred = "already_referred"
)

const referralPoints = 100

// RewardKind - какой порог был пройден этим рефералом
type RewardKind int

const (
	RewardNone RewardKind = iota
	RewardDaily
	RewardTwoWeeks
)

type ReferralResult struct {
	Status        string     `json:"status"`
	ReferralCount int        `json:"referral_count"`
	Reward        RewardKind `json:"-"`
}

// ReferralConfig - пороги наград
type ReferralConfig struct {
	Step    int           // каждые Step рефералов
	Big     int           // начиная с Big рефералов
	StepDur time.Duration // окно за прохождение Step
	BigDur  time.Duration // окно за прохождение Big
}

type ReferralService struct {
	repo     *repository.ReferralRepository
	notifier Notifier
	cfg      ReferralConfig
}

func NewReferralService(repo *repository.ReferralRepository, notifier Notifier, cfg ReferralConfig) *ReferralService {
	return &ReferralService{repo: repo, notifier: notifier, cfg: cfg}
}

func (s *ReferralService) Config() ReferralConfig {
	return s.cfg
}

// RewardFor decides the access grant for a referrer whose count just became
// newCount. The two checks are mutually exclusive: crossing Big wins over a
// simultaneous Step multiple.
func (c ReferralConfig) RewardFor(newCount int, now time.Time) (RewardKind, *time.Time) {
	if newCount >= c.Big {
		until := now.Add(c.BigDur)
		return RewardTwoWeeks, &until
	}
	if c.Step > 0 && newCount%c.Step == 0 {
		until := now.Add(c.StepDur)
		return RewardDaily, &until
	}
	return RewardNone, nil
}

// RemainingToStep returns how many referrals are left until the next Step
// multiple (returns Step when the count sits exactly on a multiple).
func (c ReferralConfig) RemainingToStep(count int) int {
	if c.Step <= 0 {
		return 0
	}
	r := c.Step - count%c.Step
	return r
}

// RemainingToBig returns how many referrals are left until the Big threshold,
// zero once it is reached.
func (c ReferralConfig) RemainingToBig(count int) int {
	if count >= c.Big {
		return 0
	}
	return c.Big - count
}

// Apply links referred to referrer and accrues the reward. The transactional
// work lives in the repository; the service only decides the grant and sends
// the notification after commit.
func (s *ReferralService) Apply(ctx context.Context, referrerID, referredID int64, now time.Time) (*ReferralResult, error) {
	if referrerID == referredID {
		return nil, ErrSelfReferral
	}

	link, err := s.repo.ApplyReferral(ctx, referrerID, referredID, referralPoints, func(newCount int) *time.Time {
		_, until := s.cfg.RewardFor(newCount, now)
		return until
	})
	if err != nil {
		return nil, err
	}
	if !link.Linked {
		return &ReferralResult{Status: ReferralStatusAlreadyReferred, ReferralCount: link.ReferralCount}, nil
	}

	reward, _ := s.cfg.RewardFor(link.ReferralCount, now)
	s.notifyReferrer(referrerID, link.ReferralCount, reward)

	return &ReferralResult{Status: ReferralStatusOK, ReferralCount: link.ReferralCount, Reward: reward}, nil
}

// notifyReferrer is best-effort: the referral already committed.
func (s *ReferralService) notifyReferrer(referrerID int64, newCount int, reward RewardKind) {
	if s.notifier == nil {
		return
	}

	text := s.cfg.ReferralMessage(newCount, reward)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, referrerID, text); err != nil {
			logger.Warn("referral notification failed", "referrer_id", referrerID, "error", err)
		}
	}()
}

// ReferralMessage builds the notification text for a referrer whose count
// just became newCount.
func (c ReferralConfig) ReferralMessage(newCount int, reward RewardKind) string {
	text := fmt.Sprintf("🎉 Teman baru bergabung lewat link kamu!\nTotal referral: %d (+%d poin)", newCount, referralPoints)

	switch reward {
	case RewardTwoWeeks:
		text += fmt.Sprintf("\n\n🏆 Kamu mencapai %d referral: akses VIP gratis 14 hari aktif!", c.Big)
	case RewardDaily:
		text += fmt.Sprintf("\n\n🎁 Kelipatan %d referral: akses VIP gratis 24 jam aktif!", c.Step)
	}

	if newCount < c.Big {
		text += fmt.Sprintf("\n%d lagi untuk bonus 24 jam, %d lagi untuk bonus 14 hari.",
			c.RemainingToStep(newCount), c.RemainingToBig(newCount))
	}
	return text
}
