package service

// DeepMerge накладывает incoming на base и возвращает новый объект, не трогая
// аргументы. Если под одним ключом с обеих сторон лежат объекты, они
// сливаются рекурсивно, любое другое значение из incoming замещает старое
// целиком, в том числе вложенные массивы.
func DeepMerge(base, incoming map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(incoming))
	for key, value := range base {
		result[key] = copyJSONValue(value)
	}
	for key, value := range incoming {
		if existing, ok := result[key]; ok {
			existingMap, okBase := existing.(map[string]interface{})
			incomingMap, okIncoming := value.(map[string]interface{})
			if okBase && okIncoming {
				result[key] = DeepMerge(existingMap, incomingMap)
				continue
			}
		}
		result[key] = copyJSONValue(value)
	}
	return result
}

// copyJSONValue копирует значение декодированного JSON: карты и срезы
// дублируются рекурсивно, скаляры возвращаются как есть.
func copyJSONValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = copyJSONValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = copyJSONValue(item)
		}
		return out
	default:
		return v
	}
}
