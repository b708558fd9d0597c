/*
facility.go - Care providers and the facilities they operate

PURPOSE:
  A Provider (介護事業者) is the legal entity that files improvement plans.
  A Facility (事業所) is one site run by a provider. Positions, staff,
  wage tables and training plans all hang off a facility.

SEE ALSO:
  - career/:        Positions and staff per facility
  - store/sqlite:   Persistence
*/
package facility

import (
	"strings"

	"github.com/warp/carepath/generic"
)

// =============================================================================
// SERVICE TYPES
// =============================================================================

// ServiceType is the kind of care service a facility provides.
type ServiceType string

const (
	ServiceHomeCare           ServiceType = "home_care"            // 訪問介護
	ServiceDayService         ServiceType = "day_service"          // 通所介護
	ServiceGroupHome          ServiceType = "group_home"           // グループホーム
	ServiceSpecialNursingHome ServiceType = "special_nursing_home" // 特別養護老人ホーム
	ServiceCareHouse          ServiceType = "care_house"           // ケアハウス
	ServiceOther              ServiceType = "other"                // その他
)

var serviceNames = map[ServiceType]string{
	ServiceHomeCare:           "訪問介護",
	ServiceDayService:         "通所介護",
	ServiceGroupHome:          "グループホーム",
	ServiceSpecialNursingHome: "特別養護老人ホーム",
	ServiceCareHouse:          "ケアハウス",
	ServiceOther:              "その他",
}

// Name returns the Japanese display name.
func (s ServiceType) Name() string {
	if n, ok := serviceNames[s]; ok {
		return n
	}
	return string(s)
}

func (s ServiceType) Valid() bool {
	_, ok := serviceNames[s]
	return ok
}

// =============================================================================
// PROVIDER
// =============================================================================

type Provider struct {
	ID              generic.ProviderID `json:"id"`
	Name            string             `json:"name" validate:"required,max=200"`
	CorporateNumber string             `json:"corporate_number" validate:"max=13"`
	Address         string             `json:"address"`
	Phone           string             `json:"phone" validate:"max=20"`
}

// NewProvider validates p and assigns an ID when it has none.
func NewProvider(p Provider) (Provider, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := generic.ValidateStruct(p); err != nil {
		return Provider{}, err
	}
	if p.ID == "" {
		p.ID = generic.ProviderID(generic.NewID())
	}
	return p, nil
}

// =============================================================================
// FACILITY
// =============================================================================

type Facility struct {
	ID             generic.FacilityID `json:"id"`
	ProviderID     generic.ProviderID `json:"provider_id" validate:"required"`
	Name           string             `json:"name" validate:"required,max=200"`
	ServiceType    ServiceType        `json:"service_type" validate:"required"`
	FacilityNumber string             `json:"facility_number" validate:"required,max=20"`
	Address        string             `json:"address"`
	Phone          string             `json:"phone" validate:"max=20"`
	Capacity       int                `json:"capacity" validate:"gte=0"`
	StaffCount     int                `json:"staff_count" validate:"gte=0"`
}

// NewFacility validates f and assigns an ID when it has none.
func NewFacility(f Facility) (Facility, error) {
	f.Name = strings.TrimSpace(f.Name)
	if err := generic.ValidateStruct(f); err != nil {
		return Facility{}, err
	}
	if !f.ServiceType.Valid() {
		return Facility{}, generic.Invalid("service_type", "unknown service type "+string(f.ServiceType))
	}
	if f.ID == "" {
		f.ID = generic.FacilityID(generic.NewID())
	}
	return f, nil
}
