package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// profileFields is a partial profile as one strategy sees it.
type profileFields struct {
	Name      string
	Character string
	Tier      string
	Points    int
	Score     *int
}

type profileStrategy struct {
	name    string
	extract func(doc *goquery.Document) (*profileFields, bool)
}

// Applied in order; the first strategy that reports success wins.
var profileStrategies = []profileStrategy{
	{name: "hydration", extract: profileFromHydration},
	{name: "dom", extract: profileFromDOM},
}

// ExtractProfile resolves the subject's canonical id and reads the profile.
// When no id can be resolved it returns the placeholder profile together
// with domain.ErrUnresolvedIdentity.
func (e *Extractor) ExtractProfile(ctx context.Context, knownID string) (*domain.ProfileData, error) {
	landing, err := e.load(ctx, e.baseURL)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(knownID)
	if IsPlaceholderID(id) {
		id = FindCanonicalID(landing)
		e.logger.Debug().Str("canonical_id", id).Msg("canonical id from profile links")
	}
	if IsPlaceholderID(id) {
		e.logger.Warn().Msg("no canonical id found on landing page")
		e.capture(ctx, "unresolved-identity")
		return StubProfile(), domain.ErrUnresolvedIdentity
	}

	doc, err := e.load(ctx, e.profileURL(id))
	if err != nil {
		return nil, err
	}

	profile := ParseProfile(doc)
	profile.CanonicalID = id
	if profile.Strategy == "" {
		e.logger.Warn().Str("canonical_id", id).Msg("no profile strategy matched, using sentinels")
		e.capture(ctx, "profile-"+id)
	}

	e.logger.Info().
		Str("canonical_id", id).
		Str("name", profile.DisplayName).
		Str("rank", profile.RankTier).
		Str("strategy", profile.Strategy).
		Msg("profile extracted")
	return profile, nil
}

// ParseProfile runs the strategy list over a profile page. The result is
// always fully shaped; Strategy is empty when nothing matched.
func ParseProfile(doc *goquery.Document) *domain.ProfileData {
	fields := &profileFields{}
	strategy := ""
	for _, s := range profileStrategies {
		if f, ok := s.extract(doc); ok {
			fields, strategy = f, s.name
			break
		}
	}

	p := &domain.ProfileData{
		DisplayName:   orUnknown(fields.Name),
		MainCharacter: orUnknown(fields.Character),
		RatingPoints:  fields.Points,
		RatingScore:   fields.Score,
		RankTier:      FormatRankTier(orUnknown(fields.Tier), fields.Score),
		Strategy:      strategy,
	}
	return p
}

// StubProfile is the placeholder returned alongside ErrUnresolvedIdentity.
func StubProfile() *domain.ProfileData {
	return &domain.ProfileData{
		CanonicalID:   "unknown",
		DisplayName:   constants.UnknownValue,
		RankTier:      constants.UnknownValue,
		MainCharacter: constants.UnknownValue,
	}
}

func FormatRankTier(tier string, score *int) string {
	if score != nil && *score > 0 {
		return fmt.Sprintf("%s (%d MR)", tier, *score)
	}
	return tier
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return constants.UnknownValue
	}
	return s
}

type nextData struct {
	Props struct {
		PageProps struct {
			FighterBannerInfo *fighterBannerInfo `json:"fighter_banner_info"`
		} `json:"pageProps"`
	} `json:"props"`
}

type fighterBannerInfo struct {
	PersonalInfo struct {
		FighterID string `json:"fighter_id"`
	} `json:"personal_info"`
	FavoriteCharacterAlpha      string `json:"favorite_character_alpha"`
	FavoriteCharacterLeagueInfo struct {
		LeaguePoint    int `json:"league_point"`
		MasterRating   int `json:"master_rating"`
		LeagueRankInfo struct {
			LeagueRankName string `json:"league_rank_name"`
		} `json:"league_rank_info"`
	} `json:"favorite_character_league_info"`
}

func profileFromHydration(doc *goquery.Document) (*profileFields, bool) {
	raw := strings.TrimSpace(doc.Find("#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, false
	}
	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, false
	}
	info := data.Props.PageProps.FighterBannerInfo
	if info == nil || (info.PersonalInfo.FighterID == "" && info.FavoriteCharacterAlpha == "") {
		return nil, false
	}

	league := info.FavoriteCharacterLeagueInfo
	f := &profileFields{
		Name:      info.PersonalInfo.FighterID,
		Character: info.FavoriteCharacterAlpha,
		Tier:      league.LeagueRankInfo.LeagueRankName,
		Points:    league.LeaguePoint,
	}
	if league.MasterRating > 0 {
		score := league.MasterRating
		f.Score = &score
	}
	return f, true
}

var (
	nameSelectors      = "[class*='status_name__'], [class*='fighter_name'], [class*='name_badge']"
	characterSelectors = "[class*='favorite_character'] img, [class*='character_image'] img, [class*='status_character'] img"
	rankSelectors      = "[class*='league_rank'] img, [class*='rank_image'] img"

	pointLabels = []string{"리그 포인트", "League Point", "LEAGUE POINT", "リーグポイント"}
	scoreLabels = []string{"마스터 레이트", "Master Rate", "MASTER RATE", "マスターレート"}
)

func profileFromDOM(doc *goquery.Document) (*profileFields, bool) {
	f := &profileFields{
		Name: firstText(doc.Find(nameSelectors)),
	}
	if alt, ok := doc.Find(characterSelectors).First().Attr("alt"); ok {
		f.Character = strings.TrimSpace(alt)
	}
	if alt, ok := doc.Find(rankSelectors).First().Attr("alt"); ok {
		f.Tier = strings.TrimSpace(alt)
	}

	found := false
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := li.Text()
		switch {
		case containsAny(text, scoreLabels) && f.Score == nil:
			if n := parseDigits(stripLabels(text, scoreLabels)); n != nil && *n > 0 {
				f.Score = n
				found = true
			}
		case containsAny(text, pointLabels) && f.Points == 0:
			if n := parseDigits(stripLabels(text, pointLabels)); n != nil {
				f.Points = *n
				found = true
			}
		}
	})

	if f.Name == "" && !found {
		return nil, false
	}
	return f, true
}

func firstText(sel *goquery.Selection) string {
	var out string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = strings.TrimSpace(s.Text())
		return out == ""
	})
	return out
}

func containsAny(text string, labels []string) bool {
	for _, l := range labels {
		if strings.Contains(text, l) {
			return true
		}
	}
	return false
}

func stripLabels(text string, labels []string) string {
	for _, l := range labels {
		text = strings.ReplaceAll(text, l, "")
	}
	return text
}
