package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// DefaultPlotlyURL is the CDN build of Plotly loaded by the page.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title     string
	PlotlyURL string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:     "Your Perspectr Network",
		PlotlyURL: DefaultPlotlyURL,
	}
}

// GenerateHTML generates a self-contained HTML page for the network plot.
func GenerateHTML(data *PlotData, opts HTMLOptions) (string, error) {
	if data == nil {
		return "", fmt.Errorf("plot data cannot be nil")
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}
	if opts.PlotlyURL == "" {
		opts.PlotlyURL = DefaultPlotlyURL
	}
	if err := validateScriptURL(opts.PlotlyURL); err != nil {
		return "", err
	}

	if data.IsEmpty() {
		return generateEmptyHTML(opts.Title), nil
	}

	plotJSON, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshaling plot data to JSON: %w", err)
	}

	tmpl := templateData{
		Title:     opts.Title,
		PlotlyURL: opts.PlotlyURL,
		PlotJSON:  template.JS(plotJSON),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, tmpl); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateScriptURL checks that the Plotly script is loaded over http(s).
func validateScriptURL(u string) error {
	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return nil
	}
	return fmt.Errorf("invalid plotly URL %q: must be http or https", u)
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	PlotlyURL string
	PlotJSON  template.JS
}

// generateEmptyHTML returns HTML for a network with no members yet.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: black;
    }
    .empty-state {
      text-align: center;
      color: #999;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: white;
    }
    .empty-state code {
      background: #222;
      color: #0ff;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No network data</h2>
    <p>Nobody has been placed in your network yet.</p>
    <p>Fill in your profile with <code>perspectr profile update</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.PlotlyURL}}"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: black;
      color: white;
    }
    h1 {
      text-align: center;
      margin: 0;
      padding: 16px 0 0;
      font-size: 28px;
    }
    #plot {
      width: 100%;
      height: 90vh;
    }
    #panel {
      position: fixed;
      inset: 0;
      display: none;
      align-items: center;
      justify-content: center;
      background: rgba(0, 0, 0, 0.5);
      z-index: 50;
    }
    #panel .card {
      position: relative;
      background: black;
      border: 1px solid #22d3ee;
      border-radius: 8px;
      padding: 24px;
      max-width: 28rem;
      width: 100%;
    }
    #panel .close {
      position: absolute;
      top: 12px;
      right: 16px;
      cursor: pointer;
      color: #999;
      background: none;
      border: none;
      font-size: 18px;
    }
    #panel h2 {
      text-align: center;
      margin-top: 0;
    }
    #panel .row {
      margin: 8px 0;
      color: #ccc;
    }
    #panel a {
      color: #22d3ee;
    }
    #panel .placeholder {
      color: #f59e0b;
      font-style: italic;
      text-align: center;
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div id="plot"></div>
  <div id="panel">
    <div class="card">
      <button class="close" id="panel-close">&#x2715;</button>
      <div id="panel-body"></div>
    </div>
  </div>
  <script>
    (function() {
      const data = {{.PlotJSON}};
      const points = data.points;

      const trace = {
        x: points.map(p => p.x),
        y: points.map(p => p.y),
        mode: 'text+markers',
        type: 'scatter',
        marker: {
          size: 40,
          color: points.map(p => p.color),
          symbol: 'circle',
          line: { color: 'rgb(0, 191, 255)', width: 2 }
        },
        text: points.map(p => p.glyph),
        textfont: { size: 20 },
        textposition: 'middle center',
        hoverinfo: 'none'
      };

      const axis = {
        showgrid: true,
        gridcolor: 'rgba(255, 255, 255, 0.1)',
        zeroline: false,
        showticklabels: false,
        fixedrange: false,
        constraintoward: 'center'
      };

      const layout = {
        paper_bgcolor: 'black',
        plot_bgcolor: 'black',
        font: { family: 'Arial, sans-serif', color: 'white' },
        xaxis: Object.assign({}, axis, { range: [data.range.xmin, data.range.xmax] }),
        yaxis: Object.assign({}, axis, { range: [data.range.ymin, data.range.ymax] }),
        showlegend: false,
        dragmode: 'pan'
      };

      const config = { displayModeBar: false, responsive: true, scrollZoom: true };

      const plot = document.getElementById('plot');
      Plotly.newPlot(plot, [trace], layout, config);

      function escapeHtml(str) {
        if (!str) return '';
        return str.replace(/&/g, '&amp;')
                  .replace(/</g, '&lt;')
                  .replace(/>/g, '&gt;')
                  .replace(/"/g, '&quot;');
      }

      function panelHTML(p) {
        let html = '<h2>' + escapeHtml(p.name) + '</h2>';
        if (p.degraded) {
          return html + '<div class="placeholder">Profile unavailable</div>';
        }
        html += '<div class="row">Email: <a href="mailto:' + escapeHtml(p.email) + '">' + escapeHtml(p.email) + '</a></div>';
        html += '<div class="row">Instagram: <a href="' + escapeHtml(p.instagram) + '" target="_blank" rel="noopener noreferrer">' +
                escapeHtml(p.instagramUsername) + '</a></div>';
        html += '<div class="row">Discord: ' + escapeHtml(p.discord) + '</div>';
        return html;
      }

      const panel = document.getElementById('panel');

      function showPanel(index) {
        if (index < 0 || index >= points.length) return;
        document.getElementById('panel-body').innerHTML = panelHTML(points[index]);
        panel.style.display = 'flex';
        const p = points[index];
        const xr = plot.layout.xaxis.range, yr = plot.layout.yaxis.range;
        const hw = (xr[1] - xr[0]) / 2, hh = (yr[1] - yr[0]) / 2;
        Plotly.relayout(plot, {
          'xaxis.range': [p.x - hw, p.x + hw],
          'yaxis.range': [p.y - hh, p.y + hh]
        });
      }

      plot.on('plotly_click', function(evt) {
        if (evt && evt.points && evt.points.length > 0) {
          showPanel(evt.points[0].pointIndex);
        }
      });

      document.getElementById('panel-close').addEventListener('click', function() {
        panel.style.display = 'none';
      });

      if (data.selectedIndex >= 0) {
        showPanel(data.selectedIndex);
      }
    })();
  </script>
</body>
</html>`
