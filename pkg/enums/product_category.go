package enums

import "fmt"

type ProductCategory string

const (
	ProductCategoryCeramica   ProductCategory = "ceramica"
	ProductCategoryAccessorio ProductCategory = "accessorio"
	ProductCategoryServizio   ProductCategory = "servizio"
)

var validProductCategories = []ProductCategory{
	ProductCategoryCeramica,
	ProductCategoryAccessorio,
	ProductCategoryServizio,
}

func (c ProductCategory) IsValid() bool {
	for _, v := range validProductCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c ProductCategory) String() string {
	return string(c)
}

func ParseProductCategory(raw string) (ProductCategory, error) {
	c := ProductCategory(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid product category: %q", raw)
	}
	return c, nil
}
