package haproxy

import "encoding/json"

// ParseStatJSON decodes the output of "show stat json": one field list per
// proxy object.
func ParseStatJSON(data []byte) ([]Statistic, error) {
	var objects [][]jsonItem
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, &StatJSONError{Kind: JSONOutputDecodeFailed, Err: err}
	}

	stats := make([]Statistic, 0, len(objects))
	for i, items := range objects {
		stat, err := decodeStatistic(i+1, pivot(items))
		if err != nil {
			return nil, &StatJSONError{Kind: JSONDecodeFailed, Err: err}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
