package crops

type CreateCropDTO struct {
	Name    string  `json:"name"`
	Variety string  `json:"variety"`
	StockKg float64 `json:"stock_kg"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateCropDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}
