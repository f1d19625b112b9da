package service

import (
	"strings"

	"guild-tasks/internal/model"
)

// CategoryService provides helpers around the configured categories.
type CategoryService struct {
	categories []model.Category
}

func NewCategoryService(categories []model.Category) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List() []model.Category {
	return s.categories
}

func (s *CategoryService) Lookup(key string) (model.Category, bool) {
	for _, cat := range s.categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return model.Category{}, false
}

// ForChannel returns the category whose tasks are posted to the named channel.
func (s *CategoryService) ForChannel(channelName string) (model.Category, bool) {
	name := strings.TrimSpace(channelName)
	for _, cat := range s.categories {
		if strings.EqualFold(cat.Channel, name) {
			return cat, true
		}
	}
	return model.Category{}, false
}
