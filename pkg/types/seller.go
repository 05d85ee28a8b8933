package types

// ShopAddress is the seller's storefront address.
type ShopAddress struct {
	Pincode  string `json:"pincode,omitempty"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
}

// SellingCategory links a seller to a catalog category with a display photo.
type SellingCategory struct {
	Category string `json:"category"`
	Photo    string `json:"photo,omitempty"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Website   string `json:"website,omitempty"`
}

type OwnerPersonal struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Owner struct {
	Personal OwnerPersonal `json:"personal"`
	Address  ShopAddress   `json:"address"`
}

type BankDetails struct {
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	BankName      string `json:"bankName,omitempty"`
}

// Legal holds the seller's compliance documents.
type Legal struct {
	Aadhar      string      `json:"aadhar,omitempty"`
	PAN         string      `json:"pan,omitempty"`
	Bank        BankDetails `json:"bank"`
	GST         string      `json:"gst,omitempty"`
	TaxID       string      `json:"taxid,omitempty"`
	Certificate []string    `json:"certificate,omitempty"`
	Signed      bool        `json:"signed"`
}

type Warehouse struct {
	WarehouseName string `json:"warehouse_name"`
	Name          string `json:"name,omitempty"`
	Address       string `json:"address,omitempty"`
	Address2      string `json:"address_2,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Default       bool   `json:"default"`
}

type PersonalDelivery struct {
	Have bool   `json:"have"`
	Name string `json:"name,omitempty"`
	Rate string `json:"rate,omitempty"`
}

type PartnerDelivery struct {
	Email      string      `json:"email,omitempty"`
	Warehouses []Warehouse `json:"warehouses,omitempty"`
}

// DeliveryPartner configures how a seller ships orders.
type DeliveryPartner struct {
	Personal PersonalDelivery `json:"personal"`
	Partner  PartnerDelivery  `json:"partner"`
}

// HasWarehouse reports whether at least one pickup warehouse is configured.
func (d DeliveryPartner) HasWarehouse() bool {
	return len(d.Partner.Warehouses) > 0
}
