package dashboard

import "strconv"

// Records flattens the dashboard into rows of
// kind, id, label, series or column, value for tabular export
func (d Dashboard) Records() [][]string {
	out := [][]string{{"kind", "id", "label", "series", "value"}}
	for _, k := range d.KPIs {
		out = append(out, []string{"kpi", "", k.Label, "", k.Formatted})
	}
	for _, c := range d.Charts {
		for _, s := range c.Series {
			for i, v := range s.Data {
				label := ""
				if i < len(c.Labels) {
					label = c.Labels[i]
				}
				out = append(out, []string{"chart", c.ID, label, s.Name, strconv.FormatFloat(v, 'f', -1, 64)})
			}
		}
	}
	for _, t := range d.Tables {
		for _, row := range t.Rows {
			label := ""
			if len(row) > 0 {
				label = row[0]
			}
			for j := 1; j < len(row) && j < len(t.Columns); j++ {
				out = append(out, []string{"table", t.ID, label, t.Columns[j], row[j]})
			}
		}
	}
	return out
}
