package mongo

import (
	"time"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/domain"
)

// PlaceDocument は places コレクション上のスキーマ。v1 ドキュメントは bathroom と schemaVersion を持たない。
type PlaceDocument struct {
	ID             string         `bson:"_id"`
	Name           string         `bson:"name"`
	Description    string         `bson:"description,omitempty"`
	Location       string         `bson:"location,omitempty"`
	Website        string         `bson:"website,omitempty"`
	Cuisine        string         `bson:"cuisine,omitempty"`
	Price          int            `bson:"price,omitempty"`
	ImageName      string         `bson:"imageName,omitempty"`
	ThingsToTry    []string       `bson:"thingsToTry,omitempty"`
	CompleteReview ReviewDocument `bson:"completeReview"`
	SchemaVersion  int            `bson:"schemaVersion,omitempty"`
	UpdatedAt      *time.Time     `bson:"updatedAt,omitempty"`
}

// ReviewDocument は place に埋め込まれるレビュー。
type ReviewDocument struct {
	Atmosphere int                  `bson:"atmosphere"`
	Service    int                  `bson:"service"`
	Music      int                  `bson:"music"`
	Bathroom   int                  `bson:"bathroom,omitempty"`
	Items      []ReviewItemDocument `bson:"items"`
}

// ReviewItemDocument はレビュー項目 1 件分の埋め込みドキュメント。
type ReviewItemDocument struct {
	ID          string `bson:"id,omitempty"`
	Name        string `bson:"name"`
	Review      int    `bson:"review"`
	Type        string `bson:"type,omitempty"`
	Description string `bson:"description,omitempty"`
	ImageName   string `bson:"imageName,omitempty"`
}

// UserDocument は users コレクション上のプロフィール。
type UserDocument struct {
	ID     string   `bson:"_id"`
	Name   string   `bson:"name,omitempty"`
	Email  string   `bson:"email,omitempty"`
	Places []string `bson:"places"`
}

// CredentialDocument は credentials コレクション上の認証情報。_id は正規化済みメールアドレス。
type CredentialDocument struct {
	Email     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Name      string    `bson:"name,omitempty"`
	Hash      []byte    `bson:"hash"`
	Salt      []byte    `bson:"salt"`
	N         int       `bson:"n"`
	R         int       `bson:"r"`
	P         int       `bson:"p"`
	KeyLen    int       `bson:"keyLen"`
	CreatedAt time.Time `bson:"createdAt"`
}

// NewPlaceDocument はドメインの Place を保存用ドキュメントへ変換する。
func NewPlaceDocument(place domain.Place) PlaceDocument {
	items := make([]ReviewItemDocument, 0, len(place.Review.Items))
	for _, item := range place.Review.Items {
		items = append(items, ReviewItemDocument{
			ID:          item.ID,
			Name:        item.Name,
			Review:      item.Review,
			Type:        string(item.Type),
			Description: item.Description,
			ImageName:   item.ImageName,
		})
	}
	doc := PlaceDocument{
		ID:          place.ID,
		Name:        place.Name,
		Description: place.Description,
		Location:    place.Location,
		Website:     place.Website,
		Cuisine:     place.Cuisine,
		Price:       int(place.Price),
		ImageName:   place.ImageName,
		ThingsToTry: append([]string{}, place.ThingsToTry...),
		CompleteReview: ReviewDocument{
			Atmosphere: place.Review.Atmosphere,
			Service:    place.Review.Service,
			Music:      place.Review.Music,
			Bathroom:   place.Review.Bathroom,
			Items:      items,
		},
		SchemaVersion: place.SchemaVersion,
	}
	if !place.UpdatedAt.IsZero() {
		updatedAt := place.UpdatedAt
		doc.UpdatedAt = &updatedAt
	}
	return doc
}

// Place はドキュメントをドメインの Place へ戻す。スキーマ移行は呼び出し側で行う。
func (d PlaceDocument) Place() domain.Place {
	items := make([]domain.ReviewItem, 0, len(d.CompleteReview.Items))
	for _, item := range d.CompleteReview.Items {
		items = append(items, domain.ReviewItem{
			ID:          item.ID,
			Name:        item.Name,
			Review:      item.Review,
			Type:        domain.ItemType(item.Type),
			Description: item.Description,
			ImageName:   item.ImageName,
		})
	}
	place := domain.Place{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		Website:     d.Website,
		Cuisine:     d.Cuisine,
		Price:       domain.PriceTier(d.Price),
		ImageName:   d.ImageName,
		ThingsToTry: append([]string{}, d.ThingsToTry...),
		Review: domain.CompleteReview{
			Atmosphere: d.CompleteReview.Atmosphere,
			Service:    d.CompleteReview.Service,
			Music:      d.CompleteReview.Music,
			Bathroom:   d.CompleteReview.Bathroom,
			Items:      items,
		},
		SchemaVersion: d.SchemaVersion,
	}
	if d.UpdatedAt != nil {
		place.UpdatedAt = *d.UpdatedAt
	}
	return place
}

func NewUserDocument(user domain.UserProfile) UserDocument {
	return UserDocument{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Places: append([]string{}, user.PlaceIDs...),
	}
}

func (d UserDocument) UserProfile() domain.UserProfile {
	return domain.UserProfile{
		ID:       d.ID,
		Name:     d.Name,
		Email:    d.Email,
		PlaceIDs: append([]string{}, d.Places...),
	}
}

func NewCredentialDocument(cred auth.Credential) CredentialDocument {
	return CredentialDocument{
		Email:     cred.Email,
		UserID:    cred.UserID,
		Name:      cred.Name,
		Hash:      cred.Hash,
		Salt:      cred.Salt,
		N:         cred.Params.N,
		R:         cred.Params.R,
		P:         cred.Params.P,
		KeyLen:    cred.Params.KeyLen,
		CreatedAt: cred.CreatedAt,
	}
}

func (d CredentialDocument) Credential() auth.Credential {
	return auth.Credential{
		Email:  d.Email,
		UserID: d.UserID,
		Name:   d.Name,
		Hash:   d.Hash,
		Salt:   d.Salt,
		Params: auth.ScryptParams{
			N:      d.N,
			R:      d.R,
			P:      d.P,
			KeyLen: d.KeyLen,
		},
		CreatedAt: d.CreatedAt,
	}
}
