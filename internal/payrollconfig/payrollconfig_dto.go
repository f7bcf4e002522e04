package payrollconfig

type CreateConfigurationRequest struct {
	ConfigurationType string  `json:"configuration_type" binding:"required"`
	Key               string  `json:"key" binding:"required"`
	Value             string  `json:"value" binding:"required"`
	ValueType         string  `json:"value_type" binding:"required"`
	RoleID            *string `json:"role_id"`
	DepartmentID      *string `json:"department_id"`
	EffectiveFrom     string  `json:"effective_from" binding:"required"`
	EffectiveTo       *string `json:"effective_to"`
}

type UpdateConfigurationRequest struct {
	Value         string  `json:"value" binding:"required"`
	IsActive      *bool   `json:"is_active"`
	EffectiveFrom string  `json:"effective_from" binding:"required"`
	EffectiveTo   *string `json:"effective_to"`
}

type ConfigurationResponse struct {
	ID                string  `json:"id"`
	CompanyID         string  `json:"company_id"`
	ConfigurationType string  `json:"configuration_type"`
	Key               string  `json:"key"`
	Value             string  `json:"value"`
	ValueType         string  `json:"value_type"`
	RoleID            *string `json:"role_id,omitempty"`
	DepartmentID      *string `json:"department_id,omitempty"`
	IsActive          bool    `json:"is_active"`
	EffectiveFrom     string  `json:"effective_from"`
	EffectiveTo       *string `json:"effective_to,omitempty"`
}
